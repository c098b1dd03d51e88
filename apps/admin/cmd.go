package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/alihaimran285-byte/final-project-sub001/core"
)

type commandLine struct {
	conf   *core.Config
	logger core.Logger
}

func (cli *commandLine) rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "admin",
		Short:         "Masomo administration commands",
		SilenceUsage:  true,
		SilenceErrors: true, // main prints them
	}
	cmd.AddCommand(
		cli.probeCommand(),
		cli.migrateCommand(),
		cli.tokenCommand(),
		cli.seedCheckCommand(),
	)
	return cmd
}

// run executes args (program name included) and writes the output to out.
func (cli *commandLine) run(args []string, out io.Writer) error {
	root := cli.rootCommand()
	root.SetOut(out)
	root.SetErr(out)
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}
