package main

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/vfsfile/filevfs/internal/cli"
)

func newDefragCommand() *cli.Command {
	flags := flag.NewFlagSet("defrag", flag.ContinueOnError)
	file := flags.String("file", "", "backing file path (overrides config)")
	configPath := flags.String("config", "", "explicit config file path")

	return &cli.Command{
		Flags: flags,
		Usage: "defrag",
		Short: "Compact the backing file",
		Long:  "Defrag opens a write section with no mutation, giving the engine a chance to reclaim space left behind by prior removals and rewrites.",
		Exec: func(ctx context.Context, o *cli.IO, args []string) error {
			fs, err := openFS(*file, *configPath)
			if err != nil {
				return err
			}

			return fs.Defragment()
		},
	}
}
