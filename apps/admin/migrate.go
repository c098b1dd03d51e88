package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/trezcool/goose"

	"github.com/alihaimran285-byte/final-project-sub001/core"
	"github.com/alihaimran285-byte/final-project-sub001/storage/database/postgres"
)

var (
	gooseRunFunc = goose.RunFS  // mockable
	openSQLFunc  = postgres.Open // mockable

	errNothingToMigrate = errors.New("the memory engine has no schema")
)

func (cli *commandLine) migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Apply the primary store schema",
		Long: `postgres: runs a goose command (up, up-by-one, up-to VERSION, down, down-to VERSION,
redo, reset, status, version, fix) against the embedded migrations.
surrealdb: only "up" is supported; it (re)defines the tables and their unique indexes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.migrate(cmd.Context(), args)
		},
	}
}

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	engine := cli.conf.Database.Engine
	switch engine {
	case core.EngineMemory:
		return errNothingToMigrate

	case core.EnginePostgres:
		db, err := openSQLFunc(cli.conf)
		if err != nil {
			return err
		}
		defer db.Close()
		return gooseRunFunc(args[0], db.DB, postgres.Migrations, postgres.MigrationsDir, args[1:]...)

	default:
		if args[0] != "up" {
			return errors.Errorf("%q: not supported by the %s engine", args[0], engine)
		}
		store, err := openPrimaryFunc(cli.conf, cli.logger)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		cli.logger.Info("schema applied")
		return nil
	}
}
