package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds application configuration from environment (and an optional file).
type Config struct {
	HTTPPort        string        `env:"HTTP_PORT" env-default:"8080" yaml:"http_port" toml:"http_port"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s" yaml:"http_read_timeout" toml:"http_read_timeout"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s" yaml:"http_write_timeout" toml:"http_write_timeout"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"120s" yaml:"http_idle_timeout" toml:"http_idle_timeout"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"15s" yaml:"shutdown_timeout" toml:"shutdown_timeout"`

	DatabaseURL string `env:"DATABASE_URL" env-default:"sqlite://todo.db" yaml:"database_url" toml:"database_url"`
	DBPoolSize  int    `env:"DB_POOL_SIZE" env-default:"10" yaml:"db_pool_size" toml:"db_pool_size"`

	// Browser origins allowed to call the API with credentials.
	CORSOrigins []string `env:"CORS_ORIGINS" env-separator:"," env-default:"http://localhost:4200,http://127.0.0.1:4200,http://localhost:3000,http://localhost:8080" yaml:"cors_origins" toml:"cors_origins"`

	LogLevel  string `env:"LOG_LEVEL" env-default:"info" yaml:"log_level" toml:"log_level"`
	LogFormat string `env:"LOG_FORMAT" env-default:"json" yaml:"log_format" toml:"log_format"`
}

const defaultEnvFile = ".env"

// Load reads CONFIG_FILE (or ./.env when present) and then the environment.
// Environment variables always win: .env files only fill variables that are
// not already set, and yaml/toml values are overridden by the environment.
// Defaults fill whatever is left empty.
func Load() (Config, error) {
	var cfg Config
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		if _, err := os.Stat(defaultEnvFile); err == nil {
			path = defaultEnvFile
		}
	}

	switch {
	case path != "" && filepath.Ext(path) == ".env":
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
	case path != "":
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
	}

	cfg.CORSOrigins = cleanOrigins(cfg.CORSOrigins)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.DBPoolSize <= 0 {
		return fmt.Errorf("DB_POOL_SIZE must be positive, got %d", c.DBPoolSize)
	}
	return nil
}

func cleanOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, o := range in {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
