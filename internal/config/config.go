// Package config resolves runtime configuration from viper-managed
// sources: flags, environment variables, and the optional config file.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the resolved runtime settings for the registry.
type Config struct {
	DatabasePath string
	ListenAddr   string
	LogLevel     string
	LogFormat    string
}

// Load reads settings out of viper, applying defaults for anything unset.
func Load() Config {
	cfg := Config{
		DatabasePath: viper.GetString("database.path"),
		ListenAddr:   viper.GetString("server.addr"),
		LogLevel:     viper.GetString("logging.level"),
		LogFormat:    viper.GetString("logging.format"),
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "~/.local/share/registry/registry.db"
	}
	cfg.DatabasePath = ExpandPath(cfg.DatabasePath)

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "console"
	}

	return cfg
}

// ExpandPath expands a leading tilde and any environment variables in path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
