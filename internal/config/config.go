package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the complete application configuration. Values from the
// TOML file are the base; environment variables override them so secrets
// stay out of the file.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Shopify ShopifyConfig `toml:"shopify"`
	Redis   RedisConfig   `toml:"redis"`
	Storage StorageConfig `toml:"storage"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Port        string `toml:"port"`
	DatabaseURL string `toml:"database_url"`
	JWTSecret   string `toml:"jwt_secret"`
}

// ShopifyConfig contains Admin API client settings
type ShopifyConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// RedisConfig contains cache settings
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StorageConfig contains MinIO settings for the image mirror
type StorageConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Enabled   bool   `toml:"enabled"`
}

// Load reads the TOML file (if it exists) and applies environment overrides.
func Load(filename string) (*Config, error) {
	config := &Config{
		Server: ServerConfig{Port: "8080"},
		Shopify: ShopifyConfig{
			TimeoutSeconds: 15,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
	}

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if _, err := toml.DecodeFile(filename, config); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	applyEnvOverrides(config)

	if config.Server.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required (set DATABASE_URL)")
	}

	return config, nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("PORT"); v != "" {
		config.Server.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Server.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		config.Server.JWTSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		config.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		config.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			config.Redis.DB = db
		}
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		config.Storage.Endpoint = v
		config.Storage.Enabled = true
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		config.Storage.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		config.Storage.SecretKey = v
	}
	if v := os.Getenv("SHOPIFY_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			config.Shopify.TimeoutSeconds = secs
		}
	}
}

// ShopifyTimeout returns the configured per-request timeout.
func (c *Config) ShopifyTimeout() time.Duration {
	return time.Duration(c.Shopify.TimeoutSeconds) * time.Second
}
