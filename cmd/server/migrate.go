package main

import (
	"log"

	"github.com/spf13/cobra"

	"medica-backend/internal/config"
	"medica-backend/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ctx := cmd.Context()

		pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		applied, err := database.RunMigrations(ctx, pool, cfg.MigrationsDir)
		if err != nil {
			return err
		}
		log.Printf("✓ %d migration(s) applied", applied)
		return nil
	},
}
