package main

import (
	"fmt"
	"os"

	"smart-trolley-backend/database"
)

// Config holds all configuration for the trolley backend.
type Config struct {
	Port string
	Env  string

	Postgres database.PostgresConfig
	RedisURL string

	TrolleyID     string
	JWTSecret     string
	AuditLogPath  string
	DemoBaseline  bool
	CustomerLabel string
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("APP_ENV", "development"),
		Postgres: database.PostgresConfig{
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Kolkata"),
		},
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),
		TrolleyID:     getEnv("TROLLEY_ID", "TROLLEY-01"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		AuditLogPath:  getEnv("AUDIT_LOG_PATH", "audit.log"),
		DemoBaseline:  getEnv("ANALYTICS_DEMO_BASELINE", "false") == "true",
		CustomerLabel: getEnv("CUSTOMER_LABEL", "Walk-in Customer"),
	}

	if cfg.Postgres.User == "" || cfg.Postgres.Password == "" || cfg.Postgres.DBName == "" || cfg.Postgres.Host == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
