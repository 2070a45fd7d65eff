// Package config loads the engine configuration from TOML files.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/llehouerou/liner/internal/resolve"
)

type Config struct {
	// FailureLog is the NDJSON file unresolved queries are appended to.
	FailureLog string `koanf:"failure_log"`

	// Scoring exposes every scorer weight for tuning.
	Scoring resolve.Weights `koanf:"scoring"`

	Lookup LookupConfig `koanf:"lookup"`

	// Last.fm verification backend (optional; skipped when unset)
	Lastfm LastfmConfig `koanf:"lastfm"`
}

// LookupConfig tunes the album-name guesser.
type LookupConfig struct {
	MinConfidence float64 `koanf:"min_confidence"` // floor for album guesses (0.0-1.0, default: 0.5)
}

// LastfmConfig holds Last.fm API credentials.
type LastfmConfig struct {
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
}

func Load() (*Config, error) {
	return loadFrom(configPaths())
}

func loadFrom(paths []string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		FailureLog: filepath.Join(xdg.DataHome, "liner", "failures.ndjson"),
		Scoring:    resolve.DefaultWeights(),
		Lookup:     LookupConfig{MinConfidence: 0.5},
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.FailureLog = expandPath(cfg.FailureLog)

	if cfg.Lookup.MinConfidence <= 0 || cfg.Lookup.MinConfidence > 1 {
		cfg.Lookup.MinConfidence = 0.5
	}

	return cfg, nil
}

func configPaths() []string {
	return []string{
		// 1. XDG config dir (~/.config/liner/config.toml)
		filepath.Join(xdg.ConfigHome, "liner", "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasLastfmConfig returns true if Last.fm verification is configured.
func (c *Config) HasLastfmConfig() bool {
	return c.Lastfm.APIKey != ""
}
