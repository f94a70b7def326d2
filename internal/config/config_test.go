package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Host: "db", Port: 5432, User: "payroll", Password: "secret", Name: "payroll", SSLMode: "disable"},
		JWT:      JWTConfig{Secret: "jwt-secret", AccessExpiration: "1h"},
		Payroll:  PayrollConfig{CalcWorkers: 4, CloseLockTTL: time.Minute, OpenMonthInterval: time.Hour, DefaultHoursPerDay: 8},
	}
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.Database.Password = ""
	cfg.Payroll.CalcWorkers = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PASSWORD")
	assert.Contains(t, err.Error(), "PAYROLL_CALC_WORKERS")
}

func TestConfig_DatabaseURL(t *testing.T) {
	assert.Equal(t, "postgres://payroll:secret@db:5432/payroll?sslmode=disable", validConfig().DatabaseURL())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")
	t.Setenv("PAYROLL_CALC_WORKERS", "3")
	t.Setenv("PAYROLL_CLOSE_LOCK_TTL", "90s")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Payroll.CalcWorkers)
	assert.Equal(t, 90*time.Second, cfg.Payroll.CloseLockTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 8, cfg.Payroll.DefaultHoursPerDay)
}

func TestLoad_InvalidNumber(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_PORT", "not-a-port")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PORT")
}

func TestAppConfig_SlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, AppConfig{LogLevel: "DEBUG"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, AppConfig{LogLevel: ""}.SlogLevel())
}
