package config

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	defaultDSN         = "host=localhost user=postgres password=postgres dbname=employees port=5432 sslmode=disable"
	defaultCORSOrigins = "http://localhost:5173"
)

var dbLogLevels = map[string]bool{"silent": true, "error": true, "warn": true, "info": true}

type Config struct {
	HTTPPort        string
	DatabaseDSN     string
	CORSOrigins     []string
	DBLogLevel      string
	ShutdownTimeout time.Duration
}

// Load reads configuration from the environment and, when path is not
// empty, from a YAML file. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("http_port", "8080")
	v.SetDefault("database_dsn", defaultDSN)
	v.SetDefault("cors_allowed_origins", defaultCORSOrigins)
	v.SetDefault("db_log_level", "warn")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
	}

	cfg := &Config{
		HTTPPort:        strings.TrimSpace(v.GetString("http_port")),
		DatabaseDSN:     v.GetString("database_dsn"),
		CORSOrigins:     splitOrigins(v.GetString("cors_allowed_origins")),
		DBLogLevel:      strings.ToLower(strings.TrimSpace(v.GetString("db_log_level"))),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
	}

	if cfg.HTTPPort == "" {
		return nil, errors.New("http_port must not be empty")
	}
	if !dbLogLevels[cfg.DBLogLevel] {
		return nil, errors.Errorf("db_log_level %q must be one of silent, error, warn, info", cfg.DBLogLevel)
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("shutdown_timeout must be positive")
	}

	if cfg.DatabaseDSN == defaultDSN {
		log.Warn("DATABASE_DSN is not set, using the local development default")
	}
	if v.GetString("cors_allowed_origins") == defaultCORSOrigins {
		log.Warn("CORS_ALLOWED_ORIGINS is not set, only the local frontend is allowed")
	}

	return cfg, nil
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
