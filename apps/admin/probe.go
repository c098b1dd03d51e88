package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alihaimran285-byte/final-project-sub001/storage/database"
	inmemdb "github.com/alihaimran285-byte/final-project-sub001/storage/database/inmem"
	"github.com/alihaimran285-byte/final-project-sub001/storage/gateway"
)

var openPrimaryFunc = database.OpenPrimary // mockable

func (cli *commandLine) probeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Report which store would serve the API's data-access calls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := cli.probe(cmd.Context())
			if err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), cli.conf.Database.Engine, state)
			return nil
		},
	}
}

func (cli *commandLine) probe(ctx context.Context) (gateway.ConnectionState, error) {
	store, err := openPrimaryFunc(cli.conf, cli.logger)
	if err != nil && err != database.ErrNoPrimary {
		return gateway.ConnectionState{}, err
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				cli.logger.Warn("closing primary store", err)
			}
		}()
	}

	gw := gateway.New(
		ctx,
		database.Primary(store),
		inmemdb.Open(nil),
		cli.logger,
		gateway.WithProbeTimeout(cli.conf.Database.ProbeTimeout),
	)
	return gw.State(), nil
}

func printState(w io.Writer, engine string, state gateway.ConnectionState) {
	fmt.Fprintf(w, "engine:        %s\n", engine)
	fmt.Fprintf(w, "backend:       %s\n", state.Backend)
	fmt.Fprintf(w, "using primary: %t\n", state.UsingPrimary)
	if state.Reason != "" {
		fmt.Fprintf(w, "reason:        %s\n", state.Reason)
	}
}
