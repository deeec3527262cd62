package main

import (
	"context"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/vfsfile/filevfs/internal/cli"
)

func newWriteCommand() *cli.Command {
	flags := flag.NewFlagSet("write", flag.ContinueOnError)
	file := flags.String("file", "", "backing file path (overrides config)")
	configPath := flags.String("config", "", "explicit config file path")

	return &cli.Command{
		Flags: flags,
		Usage: "write <path>",
		Long:  "Write replaces a file's content with bytes read from stdin.",
		Short: "Write stdin into a file",
		Exec: func(ctx context.Context, o *cli.IO, args []string) error {
			if len(args) < 1 {
				return errMissingArgument
			}

			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}

			fs, err := openFS(*file, *configPath)
			if err != nil {
				return err
			}

			f, err := fs.ResolveFile(args[0])
			if err != nil {
				return err
			}

			return f.Write(data)
		},
	}
}
