package config

import (
	"fmt"
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

// ConfigRequirements defines required sensitive values for each environment
type ConfigRequirements struct {
	RequireDBPassword bool
	RequireJWTSecret  bool
}

var (
	// Environment-specific requirements
	requirements = map[Environment]ConfigRequirements{
		Development: {},
		Test:        {},
		CI: {
			RequireDBPassword: true,
			RequireJWTSecret:  true,
		},
		Production: {
			RequireDBPassword: true,
			RequireJWTSecret:  true,
		},
	}
)

// devJWTSecret is used when no secret is configured outside CI and production
const devJWTSecret = "recipefinder-dev-secret"

// ValidateConfig checks the configuration against the requirements of its
// environment and reports every problem found at once.
func ValidateConfig(cfg *Config) error {
	reqs := requirements[cfg.Env]

	var errs []ValidationError
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Field: field, Message: msg})
	}

	if cfg.Server.Port == "" {
		add("server.port", "is required")
	}

	switch cfg.DB.Driver {
	case "postgres":
		if cfg.DB.Host == "" {
			add("db.host", "is required for the postgres driver")
		}
		if cfg.DB.Name == "" {
			add("db.name", "is required for the postgres driver")
		}
		if reqs.RequireDBPassword && cfg.DB.Password == "" {
			add("db.password", secretMessage(cfg.Env, "DB_PASSWORD", "db_password"))
		}
	case "sqlite":
		if cfg.DB.SQLitePath == "" {
			add("db.sqlite_path", "is required for the sqlite driver")
		}
	default:
		add("db.driver", fmt.Sprintf("unsupported driver %q", cfg.DB.Driver))
	}

	if cfg.JWT.Secret == "" {
		if reqs.RequireJWTSecret {
			add("jwt.secret", secretMessage(cfg.Env, "JWT_SECRET", "jwt_secret"))
		} else {
			cfg.JWT.Secret = devJWTSecret
		}
	}

	switch cfg.Embedding.Provider {
	case "hash":
	case "openai":
		if cfg.Embedding.APIKey == "" {
			add("embedding.api_key", "is required for the openai provider")
		}
	case "http":
		if cfg.Embedding.URL == "" {
			add("embedding.url", "is required for the http provider")
		}
	default:
		add("embedding.provider", fmt.Sprintf("unsupported provider %q", cfg.Embedding.Provider))
	}
	if cfg.Embedding.Dimension <= 0 {
		add("embedding.dimension", "must be positive")
	}

	r := cfg.Retrieval
	if r.Limit <= 0 {
		add("retrieval.limit", "must be positive")
	}
	if r.SimilarityThreshold < 0 || r.SimilarityThreshold > 1 {
		add("retrieval.similarity_threshold", "must be within [0, 1]")
	}
	if r.MaxCandidates <= 0 {
		add("retrieval.max_candidates", "must be positive")
	}
	if r.CandidateMultiplier <= 0 {
		add("retrieval.candidate_multiplier", "must be positive")
	}

	if cfg.RateLimit.Enabled && (cfg.RateLimit.Requests <= 0 || cfg.RateLimit.Window <= 0) {
		add("rate_limit", "requests and window must be positive when enabled")
	}

	if cfg.S3.Enabled && cfg.S3.BucketName == "" {
		add("s3.bucket_name", "is required when avatar storage is enabled")
	}

	if len(errs) == 0 {
		return nil
	}

	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		lines = append(lines, e.Error())
	}
	return fmt.Errorf("configuration validation failed:\n%s", strings.Join(lines, "\n"))
}

func secretMessage(env Environment, envVar, secret string) string {
	if env == CI {
		// CI uses environment variables, not Docker secrets
		return fmt.Sprintf("%s environment variable is required in CI environment", envVar)
	}
	return fmt.Sprintf("%s secret or %s environment variable is required", secret, envVar)
}
