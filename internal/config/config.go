package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"dentcheck/pkg/logger"
)

const defaultJWTSecret = "change-me"

var AppConfig *Config

func (c *Config) GetBaseUrl() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", c.Server.Port)
}

// Load reads config.yaml (optional), DENTCHECK_* env vars and defaults into AppConfig.
// Invalid configuration terminates the process.
func Load() {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.BindEnv("database.path", "DENTCHECK_DATABASE_PATH")
	v.BindEnv("security.jwt_secret", "DENTCHECK_JWT_SECRET")
	v.BindEnv("server.port", "APP_PORT")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.LogInfo("Config file not found. Using Environment Variables and Defaults.")
		} else {
			logger.LogWarn("Config file found but unreadable: %v", err)
		}
	}

	cfg, err := decode(v)
	if err != nil {
		log.Fatalf("[CRITICAL] Error: Failed to parse configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] CONFIGURATION ERROR: %v", err)
	}

	AppConfig = cfg
	logger.SetLevel(cfg.Log.Level)

	logger.LogInfo("⚙️  %s v%s Initialized | Env: %s | Port: %d | DB: %s | Blobs: %s",
		cfg.App.Name,
		cfg.App.Version,
		cfg.Server.Env,
		cfg.Server.Port,
		cfg.Database.Driver,
		cfg.Storage.Driver,
	)
}

// Defaults returns a configuration built only from defaults and environment.
func Defaults() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		// defaults are static; a decode failure is a programming error
		panic(err)
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DENTCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.BaseURL = cfg.GetBaseUrl()
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "Dentcheck")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.start_message", true)

	// Server
	v.SetDefault("server.port", 8040)
	v.SetDefault("server.env", "development")

	// Database
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/dentcheck.db")

	// Storage
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.upload_dir", "./uploads")
	v.SetDefault("storage.public_prefix", "/uploads/")
	v.SetDefault("storage.max_upload_size", "10MB")
	v.SetDefault("storage.max_dimension", 0)
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.cleaner.enabled", true)
	v.SetDefault("storage.cleaner.interval", "1h")
	v.SetDefault("storage.cleaner.grace_period", "30m")

	// Caching
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_capacity", 64) // 64 MB
	v.SetDefault("cache.ttl", "30m")

	// Security & Limits
	v.SetDefault("security.jwt_secret", defaultJWTSecret)
	v.SetDefault("security.token_ttl", "24h")
	v.SetDefault("security.rate_limit.enabled", true)
	v.SetDefault("security.rate_limit.requests", 20)
	v.SetDefault("security.rate_limit.window", "1s")
	v.SetDefault("security.rate_limit.burst", 50)

	// Log
	v.SetDefault("log.level", "info")
}

func (c *Config) Validate() error {
	if c.Security.JWTSecret == "" || c.Security.JWTSecret == defaultJWTSecret {
		if c.Server.Env == "production" {
			return fmt.Errorf("security.jwt_secret cannot be default or empty in production environment")
		}
		logger.LogWarn("Security Alert: Using unsafe default JWT secret. Do not use this in production!")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database.driver '%s'", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case "local":
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("storage.upload_dir is required for the local driver")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unsupported storage.driver '%s'", c.Storage.Driver)
	}

	if c.Storage.MaxDimension < 0 {
		return fmt.Errorf("storage.max_dimension must be >= 0")
	}

	durations := map[string]string{
		"cache.ttl":                    c.Cache.TTL,
		"security.token_ttl":           c.Security.TokenTTL,
		"security.rate_limit.window":   c.Security.RateLimit.Window,
		"storage.cleaner.interval":     c.Storage.Cleaner.Interval,
		"storage.cleaner.grace_period": c.Storage.Cleaner.GracePeriod,
	}
	for key, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format '%s': %v", key, value, err)
		}
	}

	return nil
}

// Duration parses a validated duration field, falling back to def.
func Duration(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
