package main

import (
	"invoice-backend/internal/database"
	"invoice-backend/internal/db"
	"invoice-backend/internal/logger"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		pool, err := db.Connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := database.NewMigrator(pool).RunMigrations(cmd.Context()); err != nil {
			return err
		}

		log := logger.WithComponent("migrate")
		log.Info().Msg("database is up to date")
		return nil
	},
}
