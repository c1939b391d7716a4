package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type ServerConfig struct {
	Addr string `json:"addr"`
}

type DatabaseConfig struct {
	// SQLitePath is the primary store: jobs, preferences, clusters,
	// schedules and patterns.
	SQLitePath string `json:"sqlite_path"`
	// MatrixURL optionally points distance matrix storage at a shared
	// Postgres instance so several optimizer instances can reuse each
	// other's matrices. Empty keeps matrices in SQLite.
	MatrixURL string `json:"matrix_url"`
}

type RedisConfig struct {
	// Addr enables the Redis geocode cache when non-empty; otherwise the
	// cache lives in the main database.
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type GeoConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Profile string `json:"profile"`
	Country string `json:"country"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Pretty bool   `json:"pretty"`
}

type SeedConfig struct {
	// Path to a JSON document of jobs and schedule history loaded at
	// startup. Ignored when the file does not exist.
	Path string `json:"path"`
}

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Geo      GeoConfig      `json:"geo"`
	Logging  LoggingConfig  `json:"logging"`
	Seed     SeedConfig     `json:"seed"`
}

func defaults() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{SQLitePath: "schedopt.db"},
		Geo:      GeoConfig{Profile: "driving-car", Country: "CA"},
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads the optional YAML config file at path, then applies
// SCHEDOPT_ environment overrides (SCHEDOPT_GEO__API_KEY -> geo.api_key).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config %q: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("SCHEDOPT_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "schedopt_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := defaults()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("config: database.sqlite_path must not be empty")
	}
	return nil
}
