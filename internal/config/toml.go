// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Game GameConfig `toml:"game"`
}

// GameConfig maps game-related settings. Durations are in milliseconds.
type GameConfig struct {
	Questions      *string `toml:"questions"`
	Bank           *string `toml:"bank"`
	Required       *int    `toml:"required"`
	BudgetMs       *int    `toml:"budget-ms"`
	PenaltyMs      *int    `toml:"penalty-ms"`
	AdvanceDelayMs *int    `toml:"advance-delay-ms"`
	TickMs         *int    `toml:"tick-ms"`
	Limit          *int    `toml:"limit"`
	Seed           *int64  `toml:"seed"`
	QuickRetry     *bool   `toml:"quick-retry"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
