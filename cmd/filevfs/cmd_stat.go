package main

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/vfsfile/filevfs/internal/cli"
)

func newStatCommand() *cli.Command {
	flags := flag.NewFlagSet("stat", flag.ContinueOnError)
	file := flags.String("file", "", "backing file path (overrides config)")
	configPath := flags.String("config", "", "explicit config file path")

	return &cli.Command{
		Flags: flags,
		Usage: "stat <path>",
		Short: "Show a node's kind, size, and child count",
		Exec: func(ctx context.Context, o *cli.IO, args []string) error {
			if len(args) < 1 {
				return errMissingArgument
			}

			fs, err := openFS(*file, *configPath)
			if err != nil {
				return err
			}

			st, err := fs.Stat(args[0])
			if err != nil {
				return err
			}

			if st.IsFolder {
				o.Printf("folder  size=%d  children=%d\n", st.Size, st.ChildCount)
			} else {
				o.Printf("file    size=%d\n", st.Size)
			}

			return nil
		},
	}
}
