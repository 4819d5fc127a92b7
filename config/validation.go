package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in a Config.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// minProductionSecretLength is the shortest JWT secret accepted in production.
const minProductionSecretLength = 32

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		add("SERVER_PORT", "must be a port number")
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" {
			add("DB_HOST", "is required")
		}
		if cfg.DBName == "" {
			add("DB_NAME", "is required")
		}
		if cfg.DBUser == "" {
			add("DB_USER", "is required")
		}
		if cfg.DBPassword == "" && (cfg.Environment == Production || cfg.Environment == CI) {
			add("DB_PASSWORD", "is required")
		}
	case "sqlite":
		if cfg.DBPath == "" {
			add("DB_PATH", "is required")
		}
		if cfg.Environment == Production {
			add("DB_DRIVER", "sqlite is not supported in production")
		}
	default:
		add("DB_DRIVER", "must be postgres or sqlite")
	}

	if cfg.JWTSecret == "" {
		add("JWT_SECRET", "is required")
	} else if cfg.Environment == Production && len(cfg.JWTSecret) < minProductionSecretLength {
		add("JWT_SECRET", fmt.Sprintf("must be at least %d characters in production", minProductionSecretLength))
	}
	if cfg.JWTExpiration <= 0 {
		add("JWT_EXPIRATION", "must be positive")
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		add("LOG_FORMAT", "must be json or console")
	}

	if cfg.RateLimitRPS < 0 {
		add("RATE_LIMIT_RPS", "must not be negative")
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst < 1 {
		add("RATE_LIMIT_BURST", "must be at least 1 when rate limiting is enabled")
	}
	if cfg.PantryWriteLimit < 0 {
		add("PANTRY_WRITE_LIMIT", "must not be negative")
	}
	if cfg.PantryWriteLimit > 0 && cfg.PantryWriteWindow <= 0 {
		add("PANTRY_WRITE_WINDOW", "must be positive")
	}
	if cfg.RecommendationCacheTTL < 0 {
		add("RECOMMENDATION_CACHE_TTL", "must not be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
