package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the complete service configuration, loaded from a TOML file
// with environment variable overrides for deployment secrets.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Redis       RedisConfig       `toml:"redis"`
	Storage     StorageConfig     `toml:"storage"`
	Auth        AuthConfig        `toml:"auth"`
	Enforcement EnforcementConfig `toml:"enforcement"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type DatabaseConfig struct {
	URL string `toml:"url"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type StorageConfig struct {
	Endpoint       string `toml:"endpoint"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	DocumentBucket string `toml:"document_bucket"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	JWKSURL   string `toml:"jwks_url"`
}

// EnforcementConfig tunes the compliance gates.
type EnforcementConfig struct {
	PaymentGraceDays   int `toml:"payment_grace_days"`
	AuditRetentionDays int `toml:"audit_retention_days"`
	CheckinCodeTTLMin  int `toml:"checkin_code_ttl_minutes"`
}

// Load reads the TOML file when present and then applies environment
// overrides, so containers can run without a config file at all.
func Load(filename string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{Port: "8080"},
		Enforcement: EnforcementConfig{
			PaymentGraceDays:   7,
			AuditRetentionDays: 365,
			CheckinCodeTTLMin:  240,
		},
	}

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if _, err := toml.DecodeFile(filename, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		cfg.Storage.UseSSL = v == "true"
	}
	if v := os.Getenv("DOCUMENT_BUCKET"); v != "" {
		cfg.Storage.DocumentBucket = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("JWKS_URL"); v != "" {
		cfg.Auth.JWKSURL = v
	}
	if v := os.Getenv("PAYMENT_GRACE_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Enforcement.PaymentGraceDays = days
		}
	}
}
