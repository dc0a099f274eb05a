package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/airdeck/internal/services"
	"github.com/desertthunder/airdeck/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	var library services.Library
	if config.API.Token != "" {
		if svc, err := services.NewRadioCMSService(config.API.BaseURL, config.API.Token, config.API.RateLimit); err == nil {
			library = svc
		}
	}
	apiService := services.NewAPIService(config.API.BaseURL, config.API.Token, nil)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Library:    library,
		API:        apiService,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "airdeck",
		Usage:    "Terminal console for a RadioCMS station library",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize the local cache database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
