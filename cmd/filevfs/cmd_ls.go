package main

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/vfsfile/filevfs/internal/cli"
)

func newLsCommand() *cli.Command {
	flags := flag.NewFlagSet("ls", flag.ContinueOnError)
	file := flags.String("file", "", "backing file path (overrides config)")
	configPath := flags.String("config", "", "explicit config file path")

	return &cli.Command{
		Flags: flags,
		Usage: "ls [path]",
		Short: "List a folder's direct children",
		Exec: func(ctx context.Context, o *cli.IO, args []string) error {
			path := "/"
			if len(args) > 0 {
				path = args[0]
			}

			fs, err := openFS(*file, *configPath)
			if err != nil {
				return err
			}

			folder, err := fs.ResolveFolder(path)
			if err != nil {
				return err
			}

			children, err := folder.List()
			if err != nil {
				return err
			}

			if len(children) == 0 {
				return nil
			}

			for _, child := range children {
				marker := " "
				if child.IsFolder() {
					marker = "/"
				}

				o.Printf("%s%s\n", child.Name(), marker)
			}

			return nil
		},
	}
}
