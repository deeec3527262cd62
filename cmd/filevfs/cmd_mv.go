package main

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/vfsfile/filevfs/internal/cli"
)

func newMvCommand() *cli.Command {
	flags := flag.NewFlagSet("mv", flag.ContinueOnError)
	file := flags.String("file", "", "backing file path (overrides config)")
	configPath := flags.String("config", "", "explicit config file path")
	overwrite := flags.Bool("overwrite", false, "replace an existing destination")

	return &cli.Command{
		Flags: flags,
		Usage: "mv [--overwrite] <src> <dst>",
		Short: "Move a file or folder",
		Exec: func(ctx context.Context, o *cli.IO, args []string) error {
			if len(args) < 2 {
				return errMissingArgument
			}

			fs, err := openFS(*file, *configPath)
			if err != nil {
				return err
			}

			src, err := fs.Resolve(args[0])
			if err != nil {
				return err
			}

			dstParent, name := splitParentName(args[1])

			dst, err := fs.ResolveFolder(dstParent)
			if err != nil {
				return err
			}

			_, err = fs.Move(src, dst, name, *overwrite)

			return err
		},
	}
}
