// Package config provides YAML-based configuration loading for stardust,
// with environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/stardust/internal/core"
)

// Config is the full stardust configuration.
type Config struct {
	Settings SettingsConfig `yaml:"settings"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
	Server   ServerConfig   `yaml:"server"`
}

// SettingsConfig holds player presentation settings.
type SettingsConfig struct {
	Volume        float64 `yaml:"volume"         env:"STARDUST_VOLUME"`
	Muted         bool    `yaml:"muted"          env:"STARDUST_MUTED"`
	ReducedMotion bool    `yaml:"reduced_motion" env:"STARDUST_REDUCED_MOTION"`
	Language      string  `yaml:"language"       env:"STARDUST_LANGUAGE"`
}

// StorageConfig locates the save database.
type StorageConfig struct {
	DBPath  string `yaml:"db_path" env:"STARDUST_DB_PATH"`
	Profile string `yaml:"profile" env:"STARDUST_PROFILE"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" env:"STARDUST_LOG_LEVEL"`
}

// ServerConfig configures the SSH server.
type ServerConfig struct {
	Addr        string `yaml:"addr"          env:"STARDUST_SSH_ADDR"`
	HostKeyPath string `yaml:"host_key_path" env:"STARDUST_SSH_HOST_KEY"`
}

// Validate checks ranges and fills blanks left by partial files.
func (c *Config) Validate() error {
	if c.Settings.Volume < 0 || c.Settings.Volume > 1 {
		return fmt.Errorf("config: volume %v out of range [0, 1]", c.Settings.Volume)
	}

	def := Default()
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if strings.TrimSpace(c.Settings.Language) == "" {
		c.Settings.Language = def.Settings.Language
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = def.Storage.DBPath
	}
	if c.Storage.Profile == "" {
		c.Storage.Profile = def.Storage.Profile
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	return nil
}

// CoreSettings converts the settings section for the run layer.
func (c Config) CoreSettings() core.Settings {
	return core.Settings{
		Volume:        c.Settings.Volume,
		Muted:         c.Settings.Muted,
		ReducedMotion: c.Settings.ReducedMotion,
		Language:      c.Settings.Language,
	}
}

// LogLevel returns the configured level, defaulting to info.
func (c Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
