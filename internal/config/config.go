package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	SMTP     SMTPConfig
	Stats    StatsConfig
	Users    UsersConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	APIPrefix             string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines token and password-hashing parameters. Secret is the
// single symmetric signing key for the deployment; there is no rotation.
type AuthConfig struct {
	Secret                 string
	SigningAlgorithm       string
	AccessTokenTTLMinutes  int
	RefreshTokenTTLMinutes int
	ResetTokenTTLHours     int
	BcryptCost             int
	MaxConcurrentHashes    int
}

// AccessTokenTTL returns the access token lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime.
func (a AuthConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLMinutes) * time.Minute
}

// ResetTokenTTL returns the password-reset token lifetime.
func (a AuthConfig) ResetTokenTTL() time.Duration {
	return time.Duration(a.ResetTokenTTLHours) * time.Hour
}

// SMTPConfig holds outbound mail settings for password-recovery delivery.
type SMTPConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	TLS       bool
	FromEmail string
	FromName  string
	Enabled   bool
}

// StatsConfig controls the request-stats recorder.
type StatsConfig struct {
	Enabled bool
	Prefix  string
}

// UsersConfig holds account-management policy.
type UsersConfig struct {
	OpenRegistration bool
}

// Load reads configuration from environment variables, applying defaults where
// possible. A missing signing secret is a hard error: the process must not
// become ready without one.
func Load() (*Config, error) {
	_ = godotenv.Load()

	secret := os.Getenv("AUTH_SECRET_KEY")
	if secret == "" {
		return nil, errors.New("AUTH_SECRET_KEY is required")
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 20))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	smtpEnabled := getEnvAsBool("EMAILS_ENABLED", false)
	smtpHost := getEnv("SMTP_HOST", "")
	if smtpHost == "" {
		smtpEnabled = false
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "queue-info-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			APIPrefix:             getEnv("API_VERSION_PREFIX", "/api/v1"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			Secret:                 secret,
			SigningAlgorithm:       getEnv("AUTH_SIGNING_ALGORITHM", "HS256"),
			AccessTokenTTLMinutes:  getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60*24*10),
			RefreshTokenTTLMinutes: getEnvAsInt("AUTH_REFRESH_TOKEN_TTL_MINUTES", 60*24*30),
			ResetTokenTTLHours:     getEnvAsInt("AUTH_RESET_TOKEN_TTL_HOURS", 48),
			BcryptCost:             getEnvAsInt("AUTH_BCRYPT_COST", 12),
			MaxConcurrentHashes:    getEnvAsInt("AUTH_MAX_CONCURRENT_HASHES", 4),
		},
		SMTP: SMTPConfig{
			Host:      smtpHost,
			Port:      getEnvAsInt("SMTP_PORT", 587),
			User:      getEnv("SMTP_USER", ""),
			Password:  os.Getenv("SMTP_PASSWORD"),
			TLS:       getEnvAsBool("SMTP_TLS", true),
			FromEmail: getEnv("EMAILS_FROM_EMAIL", "noreply@example.com"),
			FromName:  getEnv("EMAILS_FROM_NAME", "queue-info-api"),
			Enabled:   smtpEnabled,
		},
		Stats: StatsConfig{
			Enabled: getEnvAsBool("STATS_ENABLE", false),
			Prefix:  getEnv("STATS_PREFIX", "queue_info_api"),
		},
		Users: UsersConfig{
			OpenRegistration: getEnvAsBool("USERS_OPEN_REGISTRATION", true),
		},
	}

	if cfg.Auth.RefreshTokenTTLMinutes <= cfg.Auth.AccessTokenTTLMinutes {
		return nil, errors.New("AUTH_REFRESH_TOKEN_TTL_MINUTES must exceed AUTH_ACCESS_TOKEN_TTL_MINUTES")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
