// Package config loads the EZDrive settings from the environment.
//
// Variables carry the EZDRIVE_ prefix. The first underscore after the prefix
// separates the section from the key, so EZDRIVE_DATABASE_BUSY_TIMEOUT_MS
// sets database.busy_timeout_ms. A .env file in the working directory is
// loaded first when present.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "EZDRIVE_"

type Config struct {
	Primary  Primary        `koanf:"primary" validate:"required"`
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Log      LogConfig      `koanf:"log" validate:"required"`
	Session  SessionConfig  `koanf:"session" validate:"required"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=development production test"`
}

type DatabaseConfig struct {
	Path          string `koanf:"path" validate:"required"`
	BusyTimeoutMS int    `koanf:"busy_timeout_ms" validate:"gte=0"`
	MaxOpenConns  int    `koanf:"max_open_conns" validate:"gte=1"`
}

func (d DatabaseConfig) BusyTimeout() time.Duration {
	return time.Duration(d.BusyTimeoutMS) * time.Millisecond
}

type LogConfig struct {
	Level string `koanf:"level" validate:"required,oneof=trace debug info warn error disabled"`
}

// SessionConfig controls the tokens minted for new users.
type SessionConfig struct {
	SecretKeyPath string `koanf:"secret_key_path" validate:"required"`
	TTLHours      int    `koanf:"ttl_hours" validate:"gt=0"`
}

func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLHours) * time.Hour
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Database: DatabaseConfig{
			Path:          "EZDriveDB",
			BusyTimeoutMS: 5000,
			MaxOpenConns:  1,
		},
		Log: LogConfig{Level: "info"},
		Session: SessionConfig{
			SecretKeyPath: filepath.Join(os.TempDir(), "ezdrive-jwt.key"),
			TTLHours:      720,
		},
	}
}

// envKey maps EZDRIVE_DATABASE_BUSY_TIMEOUT_MS to database.busy_timeout_ms.
func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
}

// Load reads the environment over the defaults and validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
