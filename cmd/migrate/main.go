package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	apiconfig "golang-stock-tracker/internal/api/config"
	"golang-stock-tracker/internal/api/database"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
)

var (
	configPath     string
	migrationsPath string
	downSteps      int
)

// withMigrator opens the schema migrator for the configured PostgreSQL database and closes it after fn.
func withMigrator(fn func(m *migrate.Migrate) error) error {
	cfg, err := apiconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver != "" && cfg.Database.Driver != database.DriverPostgres {
		return fmt.Errorf("migrations target PostgreSQL; driver %q creates its schema on startup", cfg.Database.Driver)
	}

	m, err := migrate.New("file://"+migrationsPath, database.PostgresConfig(cfg.Database).URL())
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil {
			log.Printf("Migration source error on close: %v", srcErr)
		}
		if dbErr != nil {
			log.Printf("Migration database error on close: %v", dbErr)
		}
	}()

	return fn(m)
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			if err := ignoreNoChange(m.Up()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("Schema is up to date.")
			return nil
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the most recent schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if downSteps < 1 {
			return fmt.Errorf("--steps must be at least 1")
		}
		return withMigrator(func(m *migrate.Migrate) error {
			if err := ignoreNoChange(m.Steps(-downSteps)); err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}
			fmt.Printf("Reverted %d migration(s).\n", downSteps)
			return nil
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migrate.Migrate) error {
			version, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("No migrations applied.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("Schema version %d (dirty: %t)\n", version, dirty)
			return nil
		})
	},
}

var forceCmd = &cobra.Command{
	Use:   "force VERSION",
	Short: "Mark VERSION as applied and clear the dirty flag after a failed migration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return withMigrator(func(m *migrate.Migrate) error {
			if err := m.Force(version); err != nil {
				return err
			}
			fmt.Printf("Schema version forced to %d.\n", version)
			return nil
		})
	},
}

func main() {
	rootCmd := &cobra.Command{Use: "migrate", SilenceUsage: true}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-api.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&migrationsPath, "path", "p", "migrations", "Directory holding the SQL migrations")
	downCmd.Flags().IntVarP(&downSteps, "steps", "n", 1, "Number of migrations to revert")

	rootCmd.AddCommand(upCmd, downCmd, versionCmd, forceCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing migrate CLI: %s\n", err)
		os.Exit(1)
	}
}
