// Package config provides YAML-based configuration loading for Diwan.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Schema variants. The full variant is canonical; the simple variant drops
// the assignment and review states.
const (
	VariantFull   = "full"
	VariantSimple = "simple"
)

// Config is the top-level Diwan configuration, loaded from diwan.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Schema   SchemaConfig   `yaml:"schema"`
	Notify   NotifyConfig   `yaml:"notify"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig holds connection settings for the MySQL server. The
// password may be left empty in YAML and supplied via DIWAN_DB_PASSWORD.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// ServerConfig holds HTTP API settings. The JWT secret verifies tokens
// minted by the auth provider and may be supplied via DIWAN_JWT_SECRET.
type ServerConfig struct {
	Port      int    `yaml:"port"`
	JWTSecret string `yaml:"jwt_secret"`
}

// SchemaConfig selects the active schema variant.
type SchemaConfig struct {
	Variant       string `yaml:"variant"`        // "full" (default) or "simple"
	AllowCritical bool   `yaml:"allow_critical"` // adds the critical priority
	ExtendedRoles bool   `yaml:"extended_roles"` // adds assistant_manager
}

// NotifyConfig selects the outbound chat platform for task events.
type NotifyConfig struct {
	Platform        string `yaml:"platform"` // "slack", "discord" or "none"
	Channel         string `yaml:"channel"`
	SlackBotToken   string `yaml:"slack_bot_token"`
	SlackAppToken   string `yaml:"slack_app_token"`
	DiscordToken    string `yaml:"discord_token"`
	PollIntervalSec int    `yaml:"poll_interval_sec"`
}

// SweepConfig schedules the due-date reminder sweep.
type SweepConfig struct {
	Cron        string `yaml:"cron"` // 5-field cron expression
	DueSoonDays int    `yaml:"due_soon_days"`
}

// LogConfig controls file logging for the long-running processes.
type LogConfig struct {
	Dir   string `yaml:"dir"`
	Level string `yaml:"level"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values. Secrets left out of the
// YAML are read from the environment.
func (c *Config) applyDefaults() {
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Name == "" {
		c.Database.Name = "diwan"
	}
	if c.Database.User == "" {
		c.Database.User = "diwan"
	}
	if c.Database.Password == "" {
		c.Database.Password = os.Getenv("DIWAN_DB_PASSWORD")
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.JWTSecret == "" {
		c.Server.JWTSecret = os.Getenv("DIWAN_JWT_SECRET")
	}
	if c.Schema.Variant == "" {
		c.Schema.Variant = VariantFull
	}
	if c.Notify.Platform == "" {
		c.Notify.Platform = "none"
	}
	if c.Notify.PollIntervalSec == 0 {
		c.Notify.PollIntervalSec = 15
	}
	if c.Sweep.Cron == "" {
		c.Sweep.Cron = "0 8 * * *"
	}
	if c.Sweep.DueSoonDays == 0 {
		c.Sweep.DueSoonDays = 2
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Schema.Variant {
	case VariantFull, VariantSimple:
	default:
		errs = append(errs, fmt.Sprintf("schema.variant %q is not one of full, simple", c.Schema.Variant))
	}
	switch c.Notify.Platform {
	case "none":
	case "slack":
		if c.Notify.SlackBotToken == "" {
			errs = append(errs, "notify.slack_bot_token is required for the slack platform")
		}
		if c.Notify.Channel == "" {
			errs = append(errs, "notify.channel is required for the slack platform")
		}
	case "discord":
		if c.Notify.DiscordToken == "" {
			errs = append(errs, "notify.discord_token is required for the discord platform")
		}
		if c.Notify.Channel == "" {
			errs = append(errs, "notify.channel is required for the discord platform")
		}
	default:
		errs = append(errs, fmt.Sprintf("notify.platform %q is not one of slack, discord, none", c.Notify.Platform))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
