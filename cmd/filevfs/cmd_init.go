package main

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/vfsfile/filevfs/internal/cli"
)

func newInitCommand() *cli.Command {
	flags := flag.NewFlagSet("init", flag.ContinueOnError)
	file := flags.String("file", "", "backing file path (overrides config)")
	configPath := flags.String("config", "", "explicit config file path")

	return &cli.Command{
		Flags: flags,
		Usage: "init [--file <path>]",
		Short: "Create the backing file's empty root if the file is empty",
		Exec: func(ctx context.Context, o *cli.IO, args []string) error {
			fs, err := openFS(*file, *configPath)
			if err != nil {
				return err
			}

			if err := fs.Init(); err != nil {
				return err
			}

			o.Println("initialized")

			return nil
		},
	}
}
