package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nurpe/freelancehub/internal/config"
	"github.com/nurpe/freelancehub/internal/db"
	"github.com/nurpe/freelancehub/internal/logger"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !cfg.UsesPostgres() {
				return fmt.Errorf("migrate needs STORAGE_DRIVER=%s", config.StorageDriverPostgres)
			}
			log := logger.New(cfg.Environment)

			// db.New migrates on its own when DB_AUTO_MIGRATE is set.
			cfg.DB.AutoMigrate = false
			database, err := db.New(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := database.DB(); err == nil {
					_ = sqlDB.Close()
				}
			}()

			if err := db.Migrate(database.WithContext(cmd.Context())); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}
