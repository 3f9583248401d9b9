// Package config loads tickd settings: built-in defaults, then an optional
// YAML file, then TICKD_* environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Data   DataConfig   `yaml:"data"`
	Sync   SyncConfig   `yaml:"sync"`
	UI     UIConfig     `yaml:"ui"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

type DataConfig struct {
	Dir string `yaml:"dir"`
}

type SyncConfig struct {
	ServerURL   string `yaml:"server_url"`
	PrincipalID string `yaml:"principal_id"`
}

type UIConfig struct {
	TickMs int `yaml:"tick_ms"`
}

type ServerConfig struct {
	Addr   string `yaml:"addr"`
	DBPath string `yaml:"db_path"`
}

type LogConfig struct {
	File string `yaml:"file"`
}

// Load builds the effective configuration. The config file path comes from
// TICKD_CONFIG_PATH; when unset, <data dir>/config.yaml is tried. A missing
// file is fine, a malformed one is an error.
func Load() (*Config, error) {
	cfg := defaults()

	path := os.Getenv("TICKD_CONFIG_PATH")
	if path == "" {
		path = filepath.Join(cfg.Data.Dir, "config.yaml")
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.Server.DBPath == "" {
		cfg.Server.DBPath = filepath.Join(cfg.Data.Dir, "server.db")
	}
	return cfg, nil
}

func defaults() *Config {
	dir := defaultDataDir()
	return &Config{
		Data:   DataConfig{Dir: dir},
		UI:     UIConfig{TickMs: 100},
		Server: ServerConfig{Addr: ":8787"},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tickd"
	}
	return filepath.Join(home, ".config", "tickd")
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("TICKD_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("TICKD_SYNC_URL"); v != "" {
		cfg.Sync.ServerURL = v
	}
	if v := os.Getenv("TICKD_PRINCIPAL"); v != "" {
		cfg.Sync.PrincipalID = v
	}
	if v := os.Getenv("TICKD_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TICKD_SERVER_DB"); v != "" {
		cfg.Server.DBPath = v
	}
	if v := os.Getenv("TICKD_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("TICKD_TICK_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.UI.TickMs = n
		}
	}
}

// SyncEnabled reports whether both sync settings are present.
func (c *Config) SyncEnabled() bool {
	return c.Sync.ServerURL != "" && c.Sync.PrincipalID != ""
}
