package main

import (
	pgStorage "pos-fiscal-ledger/internal/adapter/storage/postgres"

	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded PostgreSQL schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pool, err := pgStorage.NewPool(ctx, a.cfg.Database, a.log)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := pgStorage.Migrate(ctx, pool, a.log)
			if err != nil {
				return err
			}
			a.log.Info().Int("applied", applied).Msg("schema up to date")
			return nil
		},
	}
}
