package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/hochfrequenz/task-engine/internal/recur"
)

// Config holds all application configuration.
type Config struct {
	General       GeneralConfig       `toml:"general"`
	Planner       PlannerConfig       `toml:"planner"`
	Recurrence    recur.Config        `toml:"recurrence"`
	Notifications NotificationsConfig `toml:"notifications"`
	Web           WebConfig           `toml:"web"`
}

// GeneralConfig holds general settings.
type GeneralConfig struct {
	DatabasePath string `toml:"database_path"`
}

// PlannerConfig holds the daily planner's defaults (SPEC_FULL §A.1).
type PlannerConfig struct {
	WorkHoursStart         string `toml:"work_hours_start"`
	WorkHoursEnd           string `toml:"work_hours_end"`
	DefaultEstimateMinutes int    `toml:"default_estimate_minutes"`
	Limit                  int    `toml:"limit"`
}

// NotificationsConfig holds notification settings.
type NotificationsConfig struct {
	Desktop      bool   `toml:"desktop"`
	SlackWebhook string `toml:"slack_webhook"`
}

// WebConfig holds the HTTP API's listen settings.
type WebConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		General: GeneralConfig{
			DatabasePath: filepath.Join(home, ".task-engine", "tasks.db"),
		},
		Planner: PlannerConfig{
			WorkHoursStart:         "08:00",
			WorkHoursEnd:           "17:00",
			DefaultEstimateMinutes: 15,
			Limit:                  8,
		},
		Recurrence: recur.Config{
			SweepCron: "*/15 * * * *",
		},
		Notifications: NotificationsConfig{
			Desktop: true,
		},
		Web: WebConfig{
			Port: 8080,
			Host: "127.0.0.1",
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.General.DatabasePath = ExpandPath(cfg.General.DatabasePath)

	if err := cfg.Recurrence.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "task-engine", "config.toml")
}

// LocalConfigName is the name of a per-project config file.
const LocalConfigName = ".task-engine.toml"

// FindLocalConfig searches for a local config file in the current directory
// and parent directories up to the filesystem root.
// Returns the path if found, empty string otherwise.
func FindLocalConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(dir, LocalConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// LoadWithLocalFallback loads config with the following precedence:
// 1. Explicit path (if provided)
// 2. Local config (.task-engine.toml in current or parent directories)
// 3. Global config (~/.config/task-engine/config.toml)
func LoadWithLocalFallback(explicitPath string) (*Config, error) {
	if explicitPath != "" {
		return Load(explicitPath)
	}

	if localPath := FindLocalConfig(); localPath != "" {
		return Load(localPath)
	}

	return Load(DefaultConfigPath())
}

// Save writes the configuration to a TOML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
