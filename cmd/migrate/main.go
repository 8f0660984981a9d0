package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/templui/bookshelf/internal/config"
	"github.com/templui/bookshelf/internal/db"
	"github.com/templui/bookshelf/internal/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	rootCmd.AddCommand(upCmd())
	rootCmd.AddCommand(downCmd())
	rootCmd.AddCommand(statusCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(database *sqlx.DB, driver string) error {
				err := db.RunMigrations(database.DB, driver)
				if err != nil {
					return err
				}
				return printVersion(cmd, database, driver)
			})
		},
	}
}

func downCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(database *sqlx.DB, driver string) error {
				err := db.MigrateDown(database.DB, driver)
				if err != nil {
					return err
				}
				return printVersion(cmd, database, driver)
			})
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(database *sqlx.DB, driver string) error {
				return printVersion(cmd, database, driver)
			})
		},
	}
}

func withDB(fn func(database *sqlx.DB, driver string) error) error {
	cfg := config.LoadDatabase()
	flush := logger.Init(cfg.AppEnv, cfg.SentryDSN)
	defer flush()

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() { _ = database.Close() }()

	return fn(database, cfg.DBDriver)
}

func printVersion(cmd *cobra.Command, database *sqlx.DB, driver string) error {
	version, err := db.Version(database.DB, driver)
	if err != nil {
		return err
	}
	cmd.Printf("schema version: %d\n", version)
	return nil
}
