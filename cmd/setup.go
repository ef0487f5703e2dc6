package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/auth"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/shared"
)

// Setup creates the config file from the embedded template (when absent) and
// initializes the credential database schema.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err == nil {
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
		} else {
			r.config = config
		}
		r.writePlain("Config file already exists: %s\n", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}

		config, err := shared.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load created config: %w", err)
		}
		r.config = config
		r.writePlain("✓ Config file created: %s\n", configPath)
	}

	r.logger.Info("initializing credential database", "path", r.config.Storage.Path)

	db, err := shared.NewDatabase(r.config.Storage.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	if _, err := auth.NewSQLiteStore(db); err != nil {
		return err
	}

	r.writePlain("✓ Credential database initialized: %s\n", r.config.Storage.Path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Start the transfer backend (default: %s)\n", r.config.Backend.BaseURL)
	r.writePlain("2. Run 'auth login spotify' and 'auth login ytmusic'\n")
	r.writePlain("3. Run 'transfer run <playlist URL or ID>'\n")

	return nil
}
