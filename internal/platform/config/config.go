// Package config loads process configuration from the environment.
package config

import (
	"github.com/lorekeep/lorekeep/internal/platform/logging"
)

// Config holds the settings shared by every Lorekeep process.
type Config struct {
	// CampaignsDir is the root directory for campaign artifacts.
	CampaignsDir string `env:"LOREKEEP_CAMPAIGNS_DIR" envDefault:"/data/campaigns"`
	// PlayersDir is the root directory for player artifacts.
	PlayersDir string `env:"LOREKEEP_PLAYERS_DIR" envDefault:"/data/players"`

	Log logging.Config `envPrefix:"LOREKEEP_LOG_"`
}

// Load parses a Config from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
