package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/airdeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup initializes the cache database and runs migrations, creating a
// config file from the template when none exists.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.config = config
	r.configPath = configPath
	r.logger.Info("initializing cache database", "path", config.Database.Path)

	db, err := r.openCache()
	if err != nil {
		return fmt.Errorf("failed to set up cache database: %w", err)
	}
	defer db.Close()

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlainln("✓ Cache database ready at %s", config.Database.Path)
	if config.API.Token == "" {
		r.writePlainln("Next step: run 'airdeck login' to authenticate with the backend")
	}
	return nil
}
