package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	Redis     RedisConfig
	Analytics AnalyticsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	Migrate  bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	AllowedOrigins []string
}

// RedisConfig is optional. An empty Addr keeps the training lock in-process.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AnalyticsConfig struct {
	ModelStore      string // "postgres" or "file"
	ModelDir        string
	AccuracyJitter  int
	RetrainEnabled  bool
	RetrainHour     int
	TrainingLockTTL time.Duration
}

const (
	ModelStorePostgres = "postgres"
	ModelStoreFile     = "file"
)

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Error loading .env file", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	dbMigrate, err := strconv.ParseBool(getEnv("DB_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIGRATE: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cmlabs-hris"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		Migrate:  dbMigrate,
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       getEnv("APP_TIMEZONE", "UTC"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Analytics configuration
	jitter, err := strconv.Atoi(getEnv("ANALYTICS_ACCURACY_JITTER", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid ANALYTICS_ACCURACY_JITTER: %w", err)
	}

	retrainEnabled, err := strconv.ParseBool(getEnv("RETRAIN_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid RETRAIN_ENABLED: %w", err)
	}

	retrainHour, err := strconv.Atoi(getEnv("RETRAIN_HOUR", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid RETRAIN_HOUR: %w", err)
	}

	lockTTL, err := time.ParseDuration(getEnv("TRAINING_LOCK_TTL", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRAINING_LOCK_TTL: %w", err)
	}

	config.Analytics = AnalyticsConfig{
		ModelStore:      getEnv("MODEL_STORE", ModelStorePostgres),
		ModelDir:        getEnv("MODEL_DIR", "./data/model"),
		AccuracyJitter:  jitter,
		RetrainEnabled:  retrainEnabled,
		RetrainHour:     retrainHour,
		TrainingLockTTL: lockTTL,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE is invalid: %w", err)
	}
	switch c.Analytics.ModelStore {
	case ModelStorePostgres, ModelStoreFile:
	default:
		return fmt.Errorf("MODEL_STORE must be %q or %q", ModelStorePostgres, ModelStoreFile)
	}
	if c.Analytics.ModelStore == ModelStoreFile && c.Analytics.ModelDir == "" {
		return fmt.Errorf("MODEL_DIR is required when MODEL_STORE=file")
	}
	if c.Analytics.AccuracyJitter < 0 || c.Analytics.AccuracyJitter > 50 {
		return fmt.Errorf("ANALYTICS_ACCURACY_JITTER must be between 0 and 50")
	}
	if c.Analytics.RetrainHour < 0 || c.Analytics.RetrainHour > 23 {
		return fmt.Errorf("RETRAIN_HOUR must be between 0 and 23")
	}
	return nil
}

// Location returns the time zone used to decide what "today" is.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL onto slog levels, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
