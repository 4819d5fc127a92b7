package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort     string
	ServerHost     string
	AllowedOrigins []string

	// Database configuration
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	DBPath        string
	DBAutoMigrate bool

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret     string
	JWTExpiration time.Duration

	// Logging and tracing
	LogLevel       string
	LogFormat      string
	TracingEnabled bool

	// Object storage for recipe images
	S3BucketName string
	AWSRegion    string

	// Recommendations and rate limiting
	RecommendationCacheTTL time.Duration
	RateLimitRPS           float64
	RateLimitBurst         int
	PantryWriteLimit       int
	PantryWriteWindow      time.Duration
}

// LoadConfig creates a new Config instance from defaults, an optional
// CONFIG_FILE, environment variables and secrets, in increasing precedence.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	if env == Development {
		// .env is optional
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := fromViper(v)
	cfg.Environment = env

	switch env {
	case CI:
		loadCISecrets(cfg)
	case Development, Test, Production:
		loadSecrets(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_host", "0.0.0.0")
	v.SetDefault("server_port", "8080")
	v.SetDefault("allowed_origins", "http://localhost:3000")

	v.SetDefault("db_driver", "postgres")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_name", "pantrychef")
	v.SetDefault("db_ssl_mode", "disable")
	v.SetDefault("db_path", "pantrychef.db")
	v.SetDefault("db_auto_migrate", true)

	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_db", 0)

	v.SetDefault("jwt_expiration", "24h")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("tracing_enabled", false)

	v.SetDefault("aws_region", "us-east-1")

	v.SetDefault("recommendation_cache_ttl", "10m")
	v.SetDefault("rate_limit_rps", 20)
	v.SetDefault("rate_limit_burst", 40)
	v.SetDefault("pantry_write_limit", 60)
	v.SetDefault("pantry_write_window", "1m")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		ServerPort:     v.GetString("server_port"),
		ServerHost:     v.GetString("server_host"),
		AllowedOrigins: splitList(v.GetString("allowed_origins")),

		DBDriver:      strings.ToLower(v.GetString("db_driver")),
		DBHost:        v.GetString("db_host"),
		DBPort:        v.GetString("db_port"),
		DBUser:        v.GetString("db_user"),
		DBPassword:    v.GetString("db_password"),
		DBName:        v.GetString("db_name"),
		DBSSLMode:     v.GetString("db_ssl_mode"),
		DBPath:        v.GetString("db_path"),
		DBAutoMigrate: v.GetBool("db_auto_migrate"),

		RedisHost:     v.GetString("redis_host"),
		RedisPort:     v.GetString("redis_port"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		RedisURL:      v.GetString("redis_url"),

		JWTSecret:     v.GetString("jwt_secret"),
		JWTExpiration: v.GetDuration("jwt_expiration"),

		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
		TracingEnabled: v.GetBool("tracing_enabled"),

		S3BucketName: v.GetString("s3_bucket_name"),
		AWSRegion:    v.GetString("aws_region"),

		RecommendationCacheTTL: v.GetDuration("recommendation_cache_ttl"),
		RateLimitRPS:           v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:         v.GetInt("rate_limit_burst"),
		PantryWriteLimit:       v.GetInt("pantry_write_limit"),
		PantryWriteWindow:      v.GetDuration("pantry_write_window"),
	}
}

// loadCISecrets applies the TEST_* variables GitHub Actions exposes.
func loadCISecrets(cfg *Config) {
	if s := os.Getenv("TEST_DB_PASSWORD"); s != "" {
		cfg.DBPassword = s
	}
	if s := os.Getenv("TEST_JWT_SECRET"); s != "" {
		cfg.JWTSecret = s
	}
	if s := os.Getenv("TEST_REDIS_PASSWORD"); s != "" {
		cfg.RedisPassword = s
	}
	if s := os.Getenv("TEST_REDIS_URL"); s != "" {
		cfg.RedisURL = s
	}
}

// loadSecrets overrides sensitive values with Docker secrets when present.
func loadSecrets(cfg *Config) {
	for name, dst := range map[string]*string{
		"db_user":        &cfg.DBUser,
		"db_password":    &cfg.DBPassword,
		"jwt_secret":     &cfg.JWTSecret,
		"redis_password": &cfg.RedisPassword,
		"redis_url":      &cfg.RedisURL,
	} {
		if s := readSecret(name); s != "" {
			*dst = s
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Address is the host:port the HTTP server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.ServerHost, c.ServerPort)
}

// DSN is the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// DatabaseURL is the PostgreSQL URL form used by golang-migrate.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.DBSSLMode,
	}
	return u.String()
}

// RedisEnabled reports whether a Redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// ImageUploadsEnabled reports whether an S3 bucket is configured.
func (c *Config) ImageUploadsEnabled() bool {
	return c.S3BucketName != ""
}
