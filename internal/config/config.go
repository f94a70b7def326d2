package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// RedisConfig enables the distributed close lock when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig enables close/reopen events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string
}

type PayrollConfig struct {
	CalcWorkers        int
	CloseLockTTL       time.Duration
	OpenMonthInterval  time.Duration
	DefaultHoursPerDay int
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	if err := godotenv.Load(); err != nil {
		if env == "development" {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
		slog.Info("no .env file, using environment only")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	minConns, err := getEnvInt("DB_MIN_CONNS", 5)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(maxConns),
		MinConns: int32(minConns),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "payroll-engine"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            env,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Redis configuration
	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	// Kafka configuration
	config.Kafka = KafkaConfig{
		Brokers: getEnvSlice("KAFKA_BROKERS"),
	}

	// Payroll configuration
	workers, err := getEnvInt("PAYROLL_CALC_WORKERS", 8)
	if err != nil {
		return nil, err
	}
	hoursPerDay, err := getEnvInt("PAYROLL_DEFAULT_HOURS_PER_DAY", 8)
	if err != nil {
		return nil, err
	}
	lockTTL, err := getEnvDuration("PAYROLL_CLOSE_LOCK_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	openInterval, err := getEnvDuration("PAYROLL_OPEN_MONTH_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}

	config.Payroll = PayrollConfig{
		CalcWorkers:        workers,
		CloseLockTTL:       lockTTL,
		OpenMonthInterval:  openInterval,
		DefaultHoursPerDay: hoursPerDay,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Password == "" {
		errs = append(errs, fmt.Errorf("DB_PASSWORD is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, fmt.Errorf("JWT_SECRET_KEY is required"))
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		errs = append(errs, fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME: %w", err))
	}
	if c.Payroll.CalcWorkers < 1 {
		errs = append(errs, fmt.Errorf("PAYROLL_CALC_WORKERS must be at least 1"))
	}
	if c.Payroll.CloseLockTTL <= 0 {
		errs = append(errs, fmt.Errorf("PAYROLL_CLOSE_LOCK_TTL must be positive"))
	}
	if c.Payroll.OpenMonthInterval <= 0 {
		errs = append(errs, fmt.Errorf("PAYROLL_OPEN_MONTH_INTERVAL must be positive"))
	}
	if c.Payroll.DefaultHoursPerDay < 1 || c.Payroll.DefaultHoursPerDay > 24 {
		errs = append(errs, fmt.Errorf("PAYROLL_DEFAULT_HOURS_PER_DAY must be between 1 and 24"))
	}
	return errors.Join(errs...)
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

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c AppConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
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

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
