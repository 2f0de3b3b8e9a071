package main

import (
	"fmt"

	"github.com/phrazzld/tasklist/internal/config"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configFile string
	envFile    string
}

// loadAppConfig loads and validates configuration for a command.
func loadAppConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(config.Options{
		ConfigFile: opts.configFile,
		EnvFile:    opts.envFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
