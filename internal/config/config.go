package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Philgatex/huashang-hais-app/internal/shared/connection"

	"github.com/spf13/viper"
)

// Config is the process configuration. Values come from the environment
// (optionally seeded from a .env file by godotenv before Load is called).
type Config struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	DB          connection.DBConfig
	DBRetries   int
	RedisAddr   string
	KafkaBroker string

	JWTSecret string

	RatesFile string

	HelpdeskURL     string
	HelpdeskAPIKey  string
	HelpdeskTimeout time.Duration

	RateLimitPerSecond float64
	RateLimitBurst     int

	OutboxPollInterval time.Duration
	PayrollWorkers     int
}

func Load() (Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("HTTP_READ_TIMEOUT", "5s")
	v.SetDefault("HTTP_WRITE_TIMEOUT", "10s")
	v.SetDefault("HTTP_IDLE_TIMEOUT", "60s")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_RETRIES", 5)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("HELPDESK_TIMEOUT", "30s")
	v.SetDefault("RATE_LIMIT_PER_SECOND", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("OUTBOX_POLL_INTERVAL", "3s")
	v.SetDefault("PAYROLL_WORKERS", 8)

	cfg := Config{
		Port:         v.GetString("PORT"),
		ReadTimeout:  v.GetDuration("HTTP_READ_TIMEOUT"),
		WriteTimeout: v.GetDuration("HTTP_WRITE_TIMEOUT"),
		IdleTimeout:  v.GetDuration("HTTP_IDLE_TIMEOUT"),
		DB: connection.DBConfig{
			Host:     v.GetString("DB_HOST"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			Port:     v.GetString("DB_PORT"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		DBRetries:          v.GetInt("DB_RETRIES"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		KafkaBroker:        v.GetString("KAFKA_BROKER"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		RatesFile:          v.GetString("PAYROLL_RATES_FILE"),
		HelpdeskURL:        v.GetString("HELPDESK_COMPLETION_URL"),
		HelpdeskAPIKey:     v.GetString("HELPDESK_API_KEY"),
		HelpdeskTimeout:    v.GetDuration("HELPDESK_TIMEOUT"),
		RateLimitPerSecond: v.GetFloat64("RATE_LIMIT_PER_SECOND"),
		RateLimitBurst:     v.GetInt("RATE_LIMIT_BURST"),
		OutboxPollInterval: v.GetDuration("OUTBOX_POLL_INTERVAL"),
		PayrollWorkers:     v.GetInt("PAYROLL_WORKERS"),
	}

	if cfg.DB.Host == "" {
		return Config{}, fmt.Errorf("DB_HOST is required")
	}
	if cfg.DBRetries < 1 {
		cfg.DBRetries = 1
	}

	return cfg, nil
}
