package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/airdeck/internal/services"
	"github.com/desertthunder/airdeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// Login obtains a bearer token and persists it to the config file.
//
// Two paths: username/password against the token endpoint, or a cURL command
// copied from an authenticated dashboard session, whose Authorization header
// already carries a token.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")
	username := cmd.String("username")
	password := cmd.String("password")

	var token string

	switch {
	case curlCmd != "" && curlFile != "":
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)

	case curlCmd != "" || curlFile != "":
		var curlHeaders *shared.CurlHeaders
		var err error
		if curlFile != "" {
			curlHeaders, err = shared.ParseCurlFile(curlFile)
		} else {
			curlHeaders, err = shared.ParseCurlCommand([]byte(curlCmd))
		}
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}

		token = curlHeaders.BearerToken()
		if token == "" {
			return fmt.Errorf("%w: cURL command has no Authorization bearer token", shared.ErrAuthFailed)
		}
		r.logger.Info("token extracted from cURL command")

	case username != "" && password != "":
		r.logger.Info("requesting token", "username", username)
		pair, err := services.Login(ctx, r.config.API.BaseURL, services.Credentials{
			Username: username,
			Password: password,
		})
		if err != nil {
			return err
		}
		token = pair.Access

	default:
		return fmt.Errorf("%w: provide --username/--password or --curl/--curl-file", shared.ErrMissingArgument)
	}

	r.config.API.Token = token
	if err := shared.SaveConfig(r.configPath, r.config); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	r.logger.Info("token saved", "path", r.configPath)
	return r.writePlain("✓ Logged in, token saved to %s\n", r.configPath)
}
