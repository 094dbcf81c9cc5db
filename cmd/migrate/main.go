package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1989Cristianq/modelodatos/internal/config"
	"github.com/1989Cristianq/modelodatos/internal/database"
	"github.com/1989Cristianq/modelodatos/internal/logging"
)

func main() {
	var (
		configPath string
		seed       bool
	)

	cmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Create or update the accident registry schema",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log, closer, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			defer closer.Close()

			db, err := database.Connect(cfg.Database, log)
			if err != nil {
				return fmt.Errorf("failed to connect database: %w", err)
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			ctx := cmd.Context()
			if err := database.Migrate(ctx, db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			log.Info("schema migrated", "driver", cfg.Database.Driver, "tables", len(database.Models()))

			if !seed {
				return nil
			}
			n, err := database.Seed(ctx, db)
			if err != nil {
				return fmt.Errorf("seed failed: %w", err)
			}
			log.Info("reference data seeded", "rows", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the config file")
	cmd.Flags().BoolVar(&seed, "seed", false, "load the default agent roster")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
