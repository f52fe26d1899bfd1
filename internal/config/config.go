package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/Zachdehooge/drugmort-dashboard/internal/fetcher"
)

// EnvPrefix prefixes every environment variable, e.g. DASHBOARD_SERVER_PORT.
const EnvPrefix = "DASHBOARD"

// Config is the complete dashboard configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" envconfig:"DATA"`
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// DataConfig locates the dataset and the map fragment.
type DataConfig struct {
	CSVURL       string        `yaml:"csv_url" envconfig:"CSV_URL" validate:"required,url"`
	KeyColumn    string        `yaml:"key_column" envconfig:"KEY_COLUMN" validate:"required"`
	DropColumns  []string      `yaml:"drop_columns" envconfig:"DROP_COLUMNS"`
	MapPath      string        `yaml:"map_path" envconfig:"MAP_PATH" validate:"required"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" validate:"gt=0"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Data: DataConfig{
			CSVURL:       fetcher.DefaultCSVURL,
			KeyColumn:    "HBCode",
			DropColumns:  []string{fetcher.GeometryColumn},
			MapPath:      "drugmortmap.html",
			FetchTimeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8050,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration. Values come from, in increasing priority:
// Default, the YAML file at path if it exists, a .env file in the working
// directory, then the process environment. Only variables that are set
// override earlier layers.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		err := mergeFile(path, &cfg)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// .env is optional and never overrides variables already in the environment
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeFile overlays the keys present in the YAML file onto cfg.
func mergeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
