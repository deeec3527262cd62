package main

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/vfsfile/filevfs/internal/cli"
)

func newMkdirCommand() *cli.Command {
	flags := flag.NewFlagSet("mkdir", flag.ContinueOnError)
	file := flags.String("file", "", "backing file path (overrides config)")
	configPath := flags.String("config", "", "explicit config file path")

	return &cli.Command{
		Flags: flags,
		Usage: "mkdir <path>",
		Short: "Create a folder",
		Exec: func(ctx context.Context, o *cli.IO, args []string) error {
			if len(args) < 1 {
				return errMissingArgument
			}

			fs, err := openFS(*file, *configPath)
			if err != nil {
				return err
			}

			parentPath, name := splitParentName(args[0])

			parent, err := fs.ResolveFolder(parentPath)
			if err != nil {
				return err
			}

			_, err = parent.CreateFolder(name)

			return err
		},
	}
}
