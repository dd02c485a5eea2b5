package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yigit/escola/internal/pkg/helpers"
	"gopkg.in/yaml.v3"
)

// devSessionSecret is only accepted outside production
const devSessionSecret = "dev-secret-change-me"

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string `yaml:"port" env:"SERVER_PORT"`
		Mode         string `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout  string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	Session struct {
		Secret      string `yaml:"secret" env:"SECRET_KEY"`
		CookieName  string `yaml:"cookie_name" env:"SESSION_COOKIE_NAME"`
		Lifetime    string `yaml:"lifetime" env:"SESSION_LIFETIME"`
		RememberFor string `yaml:"remember_for" env:"SESSION_REMEMBER_FOR"`
		Secure      bool   `yaml:"secure" env:"SESSION_COOKIE_SECURE"`
		HTTPOnly    bool   `yaml:"http_only" env:"SESSION_COOKIE_HTTPONLY"`
		SameSite    string `yaml:"same_site" env:"SESSION_COOKIE_SAMESITE"`
	} `yaml:"session"`

	Upload struct {
		MaxContentLength  int64    `yaml:"max_content_length" env:"MAX_CONTENT_LENGTH"`
		AllowedExtensions []string `yaml:"allowed_extensions" env:"ALLOWED_EXTENSIONS"`
	} `yaml:"upload"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if config.Session.Secret == "" && !config.IsProduction() {
		config.Session.Secret = devSessionSecret
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Server defaults
	config.Server.Port = "5000"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "30s"

	// Database defaults
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "escola"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"

	// Session defaults
	config.Session.CookieName = "escola_session"
	config.Session.Lifetime = "2h"
	config.Session.RememberFor = "720h"
	config.Session.HTTPOnly = true
	config.Session.SameSite = "lax"

	// Upload defaults
	config.Upload.MaxContentLength = 16 * 1024 * 1024
	config.Upload.AllowedExtensions = []string{"png", "jpg", "jpeg", "gif"}

	// Logging defaults
	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.Session.Secret == "" {
		return fmt.Errorf("session secret (SECRET_KEY) is required")
	}

	if config.IsProduction() && config.Session.Secret == devSessionSecret {
		return fmt.Errorf("the development session secret cannot be used in production")
	}

	durations := map[string]string{
		"server read timeout":    config.Server.ReadTimeout,
		"server write timeout":   config.Server.WriteTimeout,
		"database conn lifetime": config.Database.ConnMaxLifetime,
		"session lifetime":       config.Session.Lifetime,
		"session remember for":   config.Session.RememberFor,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Upload.MaxContentLength <= 0 {
		return fmt.Errorf("upload max content length must be positive")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	mode := strings.ToLower(c.Server.Mode)
	return mode == "production" || mode == "release"
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// AllowedExtensions returns the upload whitelist normalised to lower case without dots
func (c *Config) AllowedExtensions() []string {
	out := make([]string, 0, len(c.Upload.AllowedExtensions))
	for _, ext := range c.Upload.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			out = append(out, ext)
		}
	}
	return out
}

// ReadTimeout is the http.Server read timeout
func (c *Config) ReadTimeout() time.Duration {
	return helpers.ParseDuration(c.Server.ReadTimeout, 15*time.Second)
}

// WriteTimeout is the http.Server write timeout
func (c *Config) WriteTimeout() time.Duration {
	return helpers.ParseDuration(c.Server.WriteTimeout, 30*time.Second)
}

// SessionLifetime is how long a login without "remember me" stays valid
func (c *Config) SessionLifetime() time.Duration {
	return helpers.ParseDuration(c.Session.Lifetime, 2*time.Hour)
}

// SessionRememberFor is the persistent cookie lifetime
func (c *Config) SessionRememberFor() time.Duration {
	return helpers.ParseDuration(c.Session.RememberFor, 30*24*time.Hour)
}

// ConnMaxLifetime is the maximum lifetime of a pooled connection
func (c *Config) ConnMaxLifetime() time.Duration {
	return helpers.ParseDuration(c.Database.ConnMaxLifetime, time.Hour)
}
