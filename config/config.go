package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env      Environment `mapstructure:"-"`
	Debug    bool        `mapstructure:"debug"`
	LogLevel string      `mapstructure:"log_level"`

	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	S3        StorageConfig   `mapstructure:"s3"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// DBConfig configures the document store. Driver is "postgres" or "sqlite".
type DBConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"`
	SSLMode    string `mapstructure:"ssl_mode"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// RedisConfig configures the redis client used for caching and rate limiting
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	URL      string `mapstructure:"url"`
}

// JWTConfig configures profile session tokens
type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// EmbeddingConfig selects and configures the embedding provider.
// Provider is one of "hash", "openai" or "http".
type EmbeddingConfig struct {
	Provider  string        `mapstructure:"provider"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	URL       string        `mapstructure:"url"`
	Dimension int           `mapstructure:"dimension"`
	Timeout   time.Duration `mapstructure:"timeout"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

// RetrievalConfig holds the empirical constants of the candidate retriever
type RetrievalConfig struct {
	Limit               int           `mapstructure:"limit"`
	SimilarityThreshold float64       `mapstructure:"similarity_threshold"`
	MaxCandidates       int           `mapstructure:"max_candidates"`
	CandidateMultiplier int           `mapstructure:"candidate_multiplier"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig configures the per-client search rate limit
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// StorageConfig configures avatar storage
type StorageConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	BucketName string `mapstructure:"bucket_name"`
	Region     string `mapstructure:"region"`
}

// LoadConfig creates a new Config from defaults, an optional .env file,
// environment variables and Docker secrets, in increasing precedence.
func LoadConfig() (*Config, error) {
	// A missing .env file is normal outside local development
	_ = godotenv.Load()

	env := GetEnvironment()
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Keys whose env names don't follow the section_key pattern
	_ = v.BindEnv("embedding.api_key", "OPENAI_API_KEY", "EMBEDDING_API_KEY")
	_ = v.BindEnv("s3.region", "AWS_REGION")
	_ = v.BindEnv("s3.bucket_name", "S3_BUCKET_NAME")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Env = env

	// Outside CI sensitive values may come from Docker secrets
	if env != CI {
		loadSecrets(cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log_level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.cors_origins", []string{
		"http://localhost:5173",
		"http://localhost:3000",
		"http://127.0.0.1:5173",
		"http://127.0.0.1:3000",
	})

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "recipefinder")
	v.SetDefault("db.ssl_mode", "disable")
	v.SetDefault("db.sqlite_path", "recipefinder.db")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.url", "")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.token_ttl", "720h")

	v.SetDefault("embedding.provider", "hash")
	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.model", "text-embedding-3-small")
	v.SetDefault("embedding.url", "http://localhost:8081")
	v.SetDefault("embedding.dimension", 384)
	v.SetDefault("embedding.timeout", "5s")
	v.SetDefault("embedding.cache_ttl", "1h")

	v.SetDefault("retrieval.limit", 2)
	v.SetDefault("retrieval.similarity_threshold", 0.7)
	v.SetDefault("retrieval.max_candidates", 100)
	v.SetDefault("retrieval.candidate_multiplier", 10)
	v.SetDefault("retrieval.timeout", "3s")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 60)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.bucket_name", "recipefinder-avatars")
	v.SetDefault("s3.region", "us-east-1")
}

// loadSecrets overrides sensitive values with Docker secrets when present
func loadSecrets(cfg *Config) {
	if s := readSecret("db_password"); s != "" {
		cfg.DB.Password = s
	}
	if s := readSecret("jwt_secret"); s != "" {
		cfg.JWT.Secret = s
	}
	if s := readSecret("redis_password"); s != "" {
		cfg.Redis.Password = s
	}
	if s := readSecret("openai_api_key"); s != "" {
		cfg.Embedding.APIKey = s
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// DSN returns the postgres connection string
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Addr returns the listen address of the HTTP server
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}
