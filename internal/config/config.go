package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment   string
	ServerAddress string

	PostgresConn   string
	DatabaseName   string
	MigrationsPath string

	JWTSecret string
	RedisURL  string

	NotificationChannel   string
	NotificationQueueSize int

	PayPalClientID     string
	PayPalClientSecret string
	PayPalBaseURL      string
	PayPalCurrency     string
	PaymentReturnURL   string
	PaymentCancelURL   string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSS3Bucket        string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{
		Environment:           getEnvWithDefault("ENVIRONMENT", "development"),
		ServerAddress:         getEnvWithDefault("SERVER_ADDRESS", "0.0.0.0:8080"),
		PostgresConn:          os.Getenv("POSTGRES_CONN"),
		DatabaseName:          getEnvWithDefault("POSTGRES_DATABASE", "gigs"),
		MigrationsPath:        getEnvWithDefault("MIGRATIONS_PATH", "file://migrations"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		RedisURL:              getEnvWithDefault("REDIS_URL", "redis://localhost:6379/0"),
		NotificationChannel:   getEnvWithDefault("NOTIFICATION_CHANNEL", "notifications"),
		PayPalClientID:        os.Getenv("PAYPAL_CLIENT_ID"),
		PayPalClientSecret:    os.Getenv("PAYPAL_CLIENT_SECRET"),
		PayPalBaseURL:         getEnvWithDefault("PAYPAL_BASE_URL", "https://api-m.sandbox.paypal.com"),
		PayPalCurrency:        getEnvWithDefault("PAYPAL_CURRENCY", "USD"),
		PaymentReturnURL:      getEnvWithDefault("PAYMENT_RETURN_URL", "http://localhost:3000/payments/success"),
		PaymentCancelURL:      getEnvWithDefault("PAYMENT_CANCEL_URL", "http://localhost:3000/payments/cancel"),
		AWSRegion:             os.Getenv("AWS_REGION"),
		AWSAccessKeyID:        os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey:    os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSS3Bucket:           os.Getenv("AWS_S3_BUCKET"),
	}

	var err error
	if cfg.NotificationQueueSize, err = getIntWithDefault("NOTIFICATION_QUEUE_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getIntWithDefault("RATE_LIMIT_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getFloatWithDefault("RATE_LIMIT_RPS", 5); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.PostgresConn == "" {
		missing = append(missing, "POSTGRES_CONN")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.PayPalClientID == "" {
		missing = append(missing, "PAYPAL_CLIENT_ID")
	}
	if c.PayPalClientSecret == "" {
		missing = append(missing, "PAYPAL_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return nil
}

// StorageEnabled reports whether S3 credentials are configured.
func (c *Config) StorageEnabled() bool {
	return c.AWSRegion != "" && c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != "" && c.AWSS3Bucket != ""
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s should be an integer: %w", key, err)
	}

	return n, nil
}

func getFloatWithDefault(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s should be a number: %w", key, err)
	}

	return f, nil
}
