package main

import (
	"fmt"

	"github.com/spf13/cobra"

	echoapi "github.com/alihaimran285-byte/final-project-sub001/apps/api/echo"
	"github.com/alihaimran285-byte/final-project-sub001/core"
)

func (cli *commandLine) tokenCommand() *cobra.Command {
	var tr echoapi.TokenRequest

	cmd := &cobra.Command{
		Use:   "token --role ROLE --subject NAME",
		Short: "Issue a JWT for the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := echoapi.IssueToken(cli.conf, core.NewValidator(core.NewTranslator()), tr)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&tr.Role, "role", "r", "", "admin, teacher or student")
	cmd.Flags().StringVarP(&tr.Subject, "subject", "s", "", "the token subject (eg: a username)")
	return cmd
}
