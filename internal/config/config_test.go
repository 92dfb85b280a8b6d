package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	cfg := Load(v)
	if cfg.Port != DefaultPort {
		t.Errorf("Expected default port %s, got %s", DefaultPort, cfg.Port)
	}
	if cfg.DBPath != DefaultDBPath {
		t.Errorf("Expected default db path %s, got %s", DefaultDBPath, cfg.DBPath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("CLEF_DB", "/tmp/other.db")
	t.Setenv("CLEF_LOG_LEVEL", "debug")

	v := viper.New()
	SetDefaults(v)

	cfg := Load(v)
	if cfg.DBPath != "/tmp/other.db" {
		t.Errorf("Expected env override for db path, got %s", cfg.DBPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected env override for log level, got %s", cfg.LogLevel)
	}
}

func TestValidate_Invalid(t *testing.T) {
	cfg := &Config{Port: "", DBPath: "", LogLevel: "loud", LogFormat: "xml"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation to fail")
	}
}
