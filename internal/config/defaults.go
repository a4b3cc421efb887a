package config

import (
	_ "embed"
)

//go:embed defaults/stardust.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Settings: SettingsConfig{
			Volume:   0.7,
			Language: "en-US",
		},
		Storage: StorageConfig{
			DBPath:  "~/.stardust/stardust.db",
			Profile: "default",
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr: ":23234",
		},
	}
}
