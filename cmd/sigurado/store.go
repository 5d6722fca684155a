package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gloria-mdrrmo/sigurado/internal/district"
	"github.com/gloria-mdrrmo/sigurado/internal/domain"
	"github.com/gloria-mdrrmo/sigurado/internal/infrastructure/memory"
	"github.com/gloria-mdrrmo/sigurado/internal/infrastructure/postgres"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/config"
	"github.com/gloria-mdrrmo/sigurado/internal/shared/database"
)

// openStore builds the configured entity store. The returned DB is nil
// for the memory driver.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (domain.Store, *database.DB, error) {
	if cfg.Store.Driver == "memory" {
		log.Warn("using in-memory store; data is lost on exit")
		return memory.New(), nil, nil
	}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Store.AutoMigrate {
		if err := database.Migrate(ctx, db.Pool, log); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return postgres.New(db.Pool, cfg.Database.QueryTimeout), db, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.New(cmd.Context(), cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	return database.Migrate(cmd.Context(), db.Pool, log)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Store.Driver == "memory" {
		return fmt.Errorf("seed needs the postgres store driver")
	}

	store, db, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = district.Seed(cmd.Context(), store, log)
	return err
}
