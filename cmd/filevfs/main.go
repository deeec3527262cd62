// Command filevfs is a thin command-line front end over the filevfs
// package: every subcommand opens the configured backing file, runs one
// facade operation, and exits.
package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/vfsfile/filevfs"
	"github.com/vfsfile/filevfs/internal/cli"
)

func main() {
	io := cli.NewIO(os.Stdout, os.Stderr)

	os.Exit(run(context.Background(), io, os.Args[1:]))
}

func run(ctx context.Context, io *cli.IO, args []string) int {
	commands := allCommands()

	if len(args) == 0 {
		printUsage(io, commands)

		return 1
	}

	if args[0] == "--help" || args[0] == "-h" {
		printUsage(io, commands)

		return 0
	}

	for _, cmd := range commands {
		if cmd.Name() == args[0] {
			return cmd.Run(ctx, io, args[1:])
		}
	}

	io.ErrPrintln("unknown command:", args[0])
	printUsage(io, commands)

	return 1
}

func printUsage(io *cli.IO, commands []*cli.Command) {
	io.Println("Usage: filevfs <command> [flags] [args]")
	io.Println()
	io.Println("Commands:")

	for _, cmd := range commands {
		io.Println(cmd.HelpLine())
	}
}

func allCommands() []*cli.Command {
	return []*cli.Command{
		newInitCommand(),
		newLsCommand(),
		newMkdirCommand(),
		newTouchCommand(),
		newCatCommand(),
		newWriteCommand(),
		newRmCommand(),
		newCpCommand(),
		newMvCommand(),
		newStatCommand(),
		newDefragCommand(),
	}
}

// openFS resolves the layered config (defaults, global, project, flags) and
// opens the backing file it names.
func openFS(explicitFile, configPath string) (*filevfs.FS, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(workDir, configPath)
	if err != nil {
		return nil, err
	}

	if explicitFile != "" {
		cfg.BackingFile = explicitFile
	}

	perm, err := cfg.FileMode()
	if err != nil {
		return nil, err
	}

	path := cfg.BackingFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}

	return filevfs.OpenWithPerm(path, perm), nil
}
