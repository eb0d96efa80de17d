// ABOUTME: Configuration loading and parsing for the Locust bot
// ABOUTME: YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete bot configuration.
type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Matrix   MatrixConfig   `yaml:"matrix"`
	Database DatabaseConfig `yaml:"database"`
	Leveling LevelingConfig `yaml:"leveling"`
	Intents  IntentsConfig  `yaml:"intents"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// BotConfig holds the bot identity.
type BotConfig struct {
	// Name seeds the mention triggers ("hey <name>", "@<name>", ...).
	Name string `yaml:"name"`
	// Farewell is sent when a conversation ends. Empty uses the default.
	Farewell string `yaml:"farewell"`
}

// GeminiConfig holds generative-backend configuration.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`

	Timeout time.Duration `yaml:"-"`
	// Raw string value for YAML unmarshaling
	TimeoutRaw string `yaml:"timeout"`
}

// MatrixConfig holds the chat transport configuration.
type MatrixConfig struct {
	Homeserver   string   `yaml:"homeserver"`
	UserID       string   `yaml:"user_id"`
	AccessToken  string   `yaml:"access_token"`
	AllowedRooms []string `yaml:"allowed_rooms"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LevelingConfig tunes the XP system.
type LevelingConfig struct {
	Enabled  bool `yaml:"enabled"`
	MinXP    int  `yaml:"min_xp"`
	MaxXP    int  `yaml:"max_xp"`
	Announce bool `yaml:"announce"`

	Cooldown time.Duration `yaml:"-"`
	// Raw string value for YAML unmarshaling
	CooldownRaw string `yaml:"cooldown"`
}

// IntentsConfig points at an optional rule override file.
type IntentsConfig struct {
	// RulesPath is a TOML rule table replacing the built-in patterns.
	// Empty means use the defaults.
	RulesPath string `yaml:"rules_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// parseDurations converts raw duration strings into time.Duration fields.
func parseDurations(cfg *Config) error {
	if cfg.Gemini.TimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.Gemini.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("gemini.timeout: %w", err)
		}
		cfg.Gemini.Timeout = d
	}
	if cfg.Leveling.CooldownRaw != "" {
		d, err := time.ParseDuration(cfg.Leveling.CooldownRaw)
		if err != nil {
			return fmt.Errorf("leveling.cooldown: %w", err)
		}
		cfg.Leveling.Cooldown = d
	}
	return nil
}

// applyDefaults fills in unset optional fields.
func (c *Config) applyDefaults() {
	if c.Bot.Name == "" {
		c.Bot.Name = "axis"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-1.5-flash-latest"
	}
	if c.Gemini.Timeout == 0 {
		c.Gemini.Timeout = 10 * time.Second
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/locust.db"
	}
	if c.Leveling.Cooldown == 0 {
		c.Leveling.Cooldown = time.Minute
	}
	if c.Leveling.MinXP == 0 {
		c.Leveling.MinXP = 15
	}
	if c.Leveling.MaxXP == 0 {
		c.Leveling.MaxXP = 25
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks that required config fields are present and sane.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.api_key is required")
	}
	if c.Matrix.Homeserver == "" {
		return fmt.Errorf("matrix.homeserver is required")
	}
	if c.Matrix.UserID == "" {
		return fmt.Errorf("matrix.user_id is required")
	}
	if c.Matrix.AccessToken == "" {
		return fmt.Errorf("matrix.access_token is required")
	}
	if c.Leveling.MinXP > c.Leveling.MaxXP {
		return fmt.Errorf("leveling.min_xp (%d) exceeds leveling.max_xp (%d)", c.Leveling.MinXP, c.Leveling.MaxXP)
	}
	return nil
}
