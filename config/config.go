package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Player PlayerConfig  `mapstructure:"player"`
	UI     UIConfig      `mapstructure:"ui"`
	Log    LogConfig     `mapstructure:"log"`
	Guard  GuardConfig   `mapstructure:"guard"`
	Tracks []TrackConfig `mapstructure:"tracks"`
}

// PlayerConfig contains audio backend and session timing settings
type PlayerConfig struct {
	Backend         string        `mapstructure:"backend"` // "beep" or "mpv"
	LoadTimeout     time.Duration `mapstructure:"load_timeout"`
	TeardownTimeout time.Duration `mapstructure:"teardown_timeout"`
	HTTPTimeout     int           `mapstructure:"http_timeout"` // in seconds
}

// UIConfig contains user interface settings
type UIConfig struct {
	TableNameWidth int  `mapstructure:"table_name_width"`
	ShowArtwork    bool `mapstructure:"show_artwork"`
}

// LogConfig controls where structured logs go
type LogConfig struct {
	Level string `mapstructure:"level"`
	Dir   string `mapstructure:"dir"` // empty means stderr
}

// GuardConfig controls the audio output guard
type GuardConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// TrackConfig is one [[tracks]] entry. Duration is kept raw so it can be
// either whole seconds or a duration string like "5m".
type TrackConfig struct {
	ID       string `mapstructure:"id"`
	Name     string `mapstructure:"name"`
	URI      string `mapstructure:"uri"`
	Duration any    `mapstructure:"duration"`
	Artwork  string `mapstructure:"artwork"`
}

// GetHTTPTimeout returns the HTTP timeout as a time.Duration
func (p *PlayerConfig) GetHTTPTimeout() time.Duration {
	return time.Duration(p.HTTPTimeout) * time.Second
}

// Validate checks values viper cannot check for us
func (c *Config) Validate() error {
	switch c.Player.Backend {
	case "beep", "mpv":
	default:
		return fmt.Errorf("unknown player backend %q", c.Player.Backend)
	}
	if c.Player.LoadTimeout <= 0 {
		return fmt.Errorf("player.load_timeout must be positive")
	}
	if c.Player.TeardownTimeout <= 0 {
		return fmt.Errorf("player.teardown_timeout must be positive")
	}
	if c.Guard.Enabled && c.Guard.Interval <= 0 {
		return fmt.Errorf("guard.interval must be positive")
	}
	return nil
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Player: PlayerConfig{
			Backend:         "beep",
			LoadTimeout:     30 * time.Second,
			TeardownTimeout: 3 * time.Second,
			HTTPTimeout:     30,
		},
		UI: UIConfig{
			TableNameWidth: 40,
			ShowArtwork:    true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Guard: GuardConfig{
			Enabled:  true,
			Interval: 500 * time.Millisecond,
		},
	}
}
