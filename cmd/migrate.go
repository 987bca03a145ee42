package cmd

import (
	"github.com/spf13/cobra"

	"tasky/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := config.ConnectDB(cfg, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := config.Migrate(db); err != nil {
		return err
	}
	log.Info("Database schema is up to date")
	return nil
}
