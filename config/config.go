package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// RefundBucket maps a time-to-start cutoff to a refund percentage.
// Buckets are evaluated from the largest HoursBefore down; the first bucket
// whose cutoff is satisfied wins.
type RefundBucket struct {
	HoursBefore int     `mapstructure:"hoursBefore"`
	Percent     float64 `mapstructure:"percent"`
}

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisCatalogDB int    `mapstructure:"REDIS_CATALOG_DB"`

	// Payment gateway.
	StripeKey          string        `mapstructure:"STRIPE_KEY"`
	PaymentTimeout     time.Duration `mapstructure:"PAYMENT_TIMEOUT"`
	PaymentMaxAttempts int           `mapstructure:"PAYMENT_MAX_ATTEMPTS"`

	// Fraud screening.
	FraudEndpoint string        `mapstructure:"FRAUD_ENDPOINT"`
	FraudTimeout  time.Duration `mapstructure:"FRAUD_TIMEOUT"`

	// Availability guard.
	ReserveMaxRetries int           `mapstructure:"RESERVE_MAX_RETRIES"`
	ReserveBackoff    time.Duration `mapstructure:"RESERVE_BACKOFF"`

	// Catalog cache.
	CatalogCacheTTL time.Duration `mapstructure:"CATALOG_CACHE_TTL"`

	// Cancellation refund schedule, largest cutoff first.
	RefundSchedule []RefundBucket `mapstructure:"refundSchedule"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "roamly")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CATALOG_DB", 0)
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("PAYMENT_TIMEOUT", "30s")
	viper.SetDefault("PAYMENT_MAX_ATTEMPTS", 3)
	viper.SetDefault("FRAUD_ENDPOINT", "")
	viper.SetDefault("FRAUD_TIMEOUT", "3s")
	viper.SetDefault("RESERVE_MAX_RETRIES", 5)
	viper.SetDefault("RESERVE_BACKOFF", "20ms")
	viper.SetDefault("CATALOG_CACHE_TTL", "5m")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if len(AppConfig.RefundSchedule) == 0 {
		AppConfig.RefundSchedule = DefaultRefundSchedule()
	}
}

// DefaultRefundSchedule applies when no schedule is configured.
func DefaultRefundSchedule() []RefundBucket {
	return []RefundBucket{
		{HoursBefore: 168, Percent: 1.0},
		{HoursBefore: 72, Percent: 0.75},
		{HoursBefore: 48, Percent: 0.5},
		{HoursBefore: 24, Percent: 0.25},
		{HoursBefore: 0, Percent: 0},
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
