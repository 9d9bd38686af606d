// Package config provides configuration management for the replay trainer.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Replay  ReplayConfig  `mapstructure:"replay"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// ReplayConfig holds replay engine configuration.
type ReplayConfig struct {
	DefaultTimeframe string `mapstructure:"default_timeframe"`
}

// ScoringConfig holds behavioral scoring configuration.
type ScoringConfig struct {
	// BaselineScore is returned for every dimension of a session with no
	// trades: no evidence of indiscipline.
	BaselineScore float64 `mapstructure:"baseline_score"`
	// StopTolerance is the fraction by which a realized loss may exceed the
	// planned risk before it counts as a stop violation.
	StopTolerance float64 `mapstructure:"stop_tolerance"`
	// PatienceHoldTarget is the share of the session span an average hold
	// must reach for full holding credit.
	PatienceHoldTarget float64 `mapstructure:"patience_hold_target"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/replay-trainer"
	}
	return filepath.Join(home, ".config", "replay-trainer")
}

// DefaultScoringConfig returns the documented scoring defaults.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		BaselineScore:      100,
		StopTolerance:      0.10,
		PatienceHoldTarget: 0.15,
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.SetEnvPrefix("REPLAY_TRAINER")
	v.AutomaticEnv()

	v.SetDefault("storage.db_path", filepath.Join(configDir, "replay.db"))
	v.SetDefault("replay.default_timeframe", "1min")
	v.SetDefault("scoring.baseline_score", 100)
	v.SetDefault("scoring.stop_tolerance", 0.10)
	v.SetDefault("scoring.patience_hold_target", 0.15)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "replay.log"))
	v.SetDefault("logging.max_size", 50)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age", 30)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}
