package main

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/vfsfile/filevfs/internal/cli"
)

func newCatCommand() *cli.Command {
	flags := flag.NewFlagSet("cat", flag.ContinueOnError)
	file := flags.String("file", "", "backing file path (overrides config)")
	configPath := flags.String("config", "", "explicit config file path")

	return &cli.Command{
		Flags: flags,
		Usage: "cat <path>",
		Short: "Print a file's content",
		Exec: func(ctx context.Context, o *cli.IO, args []string) error {
			if len(args) < 1 {
				return errMissingArgument
			}

			fs, err := openFS(*file, *configPath)
			if err != nil {
				return err
			}

			f, err := fs.ResolveFile(args[0])
			if err != nil {
				return err
			}

			data, err := f.Read()
			if err != nil {
				return err
			}

			o.Printf("%s", data)

			return nil
		},
	}
}
