package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigPath is the default configuration file location.
const ConfigPath = "config.yaml"

// Defaults applied when neither file nor environment provide a value.
const (
	DefaultPort                   = "8000"
	DefaultChatRateLimitPerMinute = 60
)

// FileConfig represents configuration loaded from YAML plus environment
// overrides. The database values are optional: without them the service
// runs degraded (no draft persistence) and the diagnostics endpoint reports
// which of the two is missing.
type FileConfig struct {
	Port          string `yaml:"port"`
	LogLevel      string `yaml:"logLevel"`
	DatabaseURL   string `yaml:"databaseURL"`
	DatabaseName  string `yaml:"databaseName"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	// ChatRateLimitPerMinute caps chat requests per client IP; it only
	// takes effect when redisAddr is configured.
	ChatRateLimitPerMinute int `yaml:"chatRateLimitPerMinute"`
}

// Load reads config from path (defaults to config.yaml). A missing file is
// not an error for this demo; environment variables and defaults still
// apply. A .env file is honored when present.
func Load(path string) (FileConfig, error) {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
		// Run on env vars and defaults alone.
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	// Override with environment variables.
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("DATABASE_NAME"); v != "" {
		cfg.DatabaseName = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("CHAT_RATE_LIMIT_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("parse CHAT_RATE_LIMIT_PER_MINUTE: %w", err)
		}
		cfg.ChatRateLimitPerMinute = n
	}

	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.ChatRateLimitPerMinute == 0 {
		cfg.ChatRateLimitPerMinute = DefaultChatRateLimitPerMinute
	}

	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required")
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return fmt.Errorf("config: port must be numeric: %w", err)
	}
	if cfg.ChatRateLimitPerMinute < 0 {
		return errors.New("config: chatRateLimitPerMinute must not be negative")
	}
	return nil
}
