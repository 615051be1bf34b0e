package main

import (
	"context"

	"github.com/spf13/cobra"

	"fictures/internal/config"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close(ctx)

			return db.EnsureSchema(ctx)
		},
	}
}
