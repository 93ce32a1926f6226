package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "dailytask"
	configFile = "config.yaml"
)

type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Timers        TimerConfig         `yaml:"timers"`
	Export        ExportConfig        `yaml:"export"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Log           LogConfig           `yaml:"log"`
}

type StorageConfig struct {
	// Path of the SQLite database. Empty means $XDG_DATA_HOME/dailytask.
	Path string `yaml:"path"`
	Key  string `yaml:"key"`
}

type TimerConfig struct {
	TickInterval     time.Duration `yaml:"tick_interval"`
	ReminderInterval time.Duration `yaml:"reminder_interval"`
}

type ExportConfig struct {
	Dir             string `yaml:"dir"`
	CopyToClipboard bool   `yaml:"copy_to_clipboard"`
}

type NotificationsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LogConfig struct {
	// File receives log output. Empty discards it while the TUI runs.
	File string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Key: "tasks_v4"},
		Timers: TimerConfig{
			TickInterval:     time.Second,
			ReminderInterval: 5 * time.Second,
		},
		Export:        ExportConfig{Dir: "."},
		Notifications: NotificationsConfig{Enabled: true},
	}
}

// Path returns the config file location under $XDG_CONFIG_HOME.
func Path() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, appName, configFile), nil
}

// Load reads the config at path, or the default location when path is
// empty. A missing file yields the defaults, which are written to path so
// the user has a file to edit.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, fmt.Errorf("determine config path: %w", err)
		}
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := Save(path, cfg); err != nil {
				log.Printf("write default config: %v", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.Storage.Key == "" {
		c.Storage.Key = def.Storage.Key
	}
	if c.Timers.TickInterval <= 0 {
		c.Timers.TickInterval = def.Timers.TickInterval
	}
	if c.Timers.ReminderInterval <= 0 {
		c.Timers.ReminderInterval = def.Timers.ReminderInterval
	}
	if c.Export.Dir == "" {
		c.Export.Dir = def.Export.Dir
	}
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
