// Package config loads application configuration from flags and
// CLEF_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultPort   = "7300"
	DefaultDBPath = "clef.db"
)

// Config holds all application configuration
type Config struct {
	Port      string
	DBPath    string
	SyncToken string
	LogLevel  string
	LogFormat string
}

// SetDefaults registers defaults and the environment binding on the
// given viper instance. Call once before Load.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("db", DefaultDBPath)
	v.SetDefault("sync-token", "")
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")

	v.SetEnvPrefix("CLEF")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load materializes a Config from the viper instance.
func Load(v *viper.Viper) *Config {
	return &Config{
		Port:      v.GetString("port"),
		DBPath:    v.GetString("db"),
		SyncToken: v.GetString("sync-token"),
		LogLevel:  v.GetString("log-level"),
		LogFormat: v.GetString("log-format"),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "port cannot be empty")
	}
	if c.DBPath == "" {
		errors = append(errors, "db path cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("log level must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("log format must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}
	return nil
}
