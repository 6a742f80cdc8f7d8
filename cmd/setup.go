package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/dhmun/mediapack/internal/shared"
)

// SetupDatabase prepares a working installation: it materializes config.toml
// from the embedded template when missing, creates the database directory,
// and applies all pending migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config, err := loadOrCreateConfig(r.logger, configPath)
	if err != nil {
		r.logger.Warn("falling back to default config", "error", err)
		config = shared.DefaultConfig()
	}

	if dir := filepath.Dir(config.Database.Path); dir != "." && config.Database.Path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.writePlain("✓ database ready at %s\n", config.Database.Path)
	r.writePlain("Run 'mediapack catalog import --file <contents.json>' to load the catalog.\n")
	return nil
}

// loadOrCreateConfig reads the config file, writing it from the embedded
// template first when it does not exist yet.
func loadOrCreateConfig(logger *log.Logger, path string) (*shared.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("config file not found, creating from template", "path", path)
		if err := shared.CreateConfigFile(path); err != nil {
			return nil, err
		}
	}
	return shared.LoadConfig(path)
}
