package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// FileName is the config file name looked up in the search directories.
const FileName = "stardust.yaml"

// Load reads the configuration.
// Search order: customPath -> ~/.stardust/config.yaml -> ./configs/stardust.yaml -> embedded default.
// Values missing from the file keep their defaults. STARDUST_* environment
// variables override whatever was read.
func Load(customPath string) (Config, error) {
	cfg := Default()

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return finish(cfg)
	}

	if path := userConfigPath(); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if next, ok := parse(cfg, data); ok {
				return finish(next)
			}
		}
	}

	if data, err := os.ReadFile(filepath.Join("configs", FileName)); err == nil {
		if next, ok := parse(cfg, data); ok {
			return finish(next)
		}
	}

	if next, ok := parse(cfg, defaultYAML); ok {
		cfg = next
	}
	return finish(cfg)
}

// parse decodes data over base. A file that does not parse is skipped.
func parse(base Config, data []byte) (Config, bool) {
	if err := yaml.Unmarshal(data, &base); err != nil {
		return Config{}, false
	}
	return base, true
}

func finish(cfg Config) (Config, error) {
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// userConfigPath returns the path to the user config file, or empty if home
// is unavailable.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".stardust", "config.yaml")
}

// Write saves cfg as YAML, creating parent directories.
func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
