package main

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/vfsfile/filevfs"
	"github.com/vfsfile/filevfs/internal/cli"
)

func newRmCommand() *cli.Command {
	flags := flag.NewFlagSet("rm", flag.ContinueOnError)
	file := flags.String("file", "", "backing file path (overrides config)")
	configPath := flags.String("config", "", "explicit config file path")
	recursive := flags.BoolP("recursive", "r", false, "remove a non-empty folder and its contents")

	return &cli.Command{
		Flags: flags,
		Usage: "rm [-r] <path>",
		Short: "Remove a file or folder",
		Exec: func(ctx context.Context, o *cli.IO, args []string) error {
			if len(args) < 1 {
				return errMissingArgument
			}

			fs, err := openFS(*file, *configPath)
			if err != nil {
				return err
			}

			node, err := fs.Resolve(args[0])
			if err != nil {
				return err
			}

			switch n := node.(type) {
			case *filevfs.Folder:
				return n.Remove(*recursive)
			case *filevfs.File:
				return n.Remove()
			default:
				return errors.New("rm: unresolvable node")
			}
		},
	}
}
