package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/alihaimran285-byte/final-project-sub001/core/school"
	inmemdb "github.com/alihaimran285-byte/final-project-sub001/storage/database/inmem"
)

func (cli *commandLine) seedCheckCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "seed-check",
		Short: "Parse a fallback seed file and count its records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = cli.conf.Database.SeedFile
			}
			// unlike the API, a missing file is an error here
			data, err := os.ReadFile(path)
			if err != nil {
				return errors.Wrapf(err, "reading %s", path)
			}
			seed, err := inmemdb.ParseSeed(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var total int
			for _, kind := range school.Kinds {
				n := len(seed[kind])
				total += n
				fmt.Fprintf(out, "%-12s %d\n", kind.Collection(), n)
			}
			fmt.Fprintf(out, "%-12s %d\n", "total", total)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "seed file (default: database.seedFile)")
	return cmd
}
