// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Flash   FlashConfig   `toml:"flash"`
	Display DisplayConfig `toml:"display"`
	Log     LogConfig     `toml:"log"`
}

// FlashConfig maps scheduler settings.
type FlashConfig struct {
	IntervalMs      *int     `toml:"interval"`
	DurationMs      *int     `toml:"duration"`
	Mode            *string  `toml:"mode"`
	NoRepeat        *bool    `toml:"no-repeat"`
	AutoStop        *bool    `toml:"auto-stop"`
	AutoStopMinutes *float64 `toml:"auto-stop-min"`
	AutoStopFlashes *int     `toml:"auto-stop-flashes"`
}

// DisplayConfig maps presentation settings.
type DisplayConfig struct {
	Color    *string `toml:"color"`
	Position *string `toml:"position"`
	Bold     *bool   `toml:"bold"`
	Backdrop *bool   `toml:"backdrop"`
	Bullets  *bool   `toml:"bullets"`
	Markdown *bool   `toml:"markdown"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
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
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
