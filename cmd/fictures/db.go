package main

import (
	"context"

	"fictures/internal/config"
	"fictures/internal/store/postgres"
)

func openDB(ctx context.Context, cfg *config.Config) (*postgres.Client, error) {
	return postgres.New(ctx, cfg.Database.DSN)
}
