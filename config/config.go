package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	AppSecret         string `mapstructure:"APP_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB     int    `mapstructure:"REDIS_CACHE_DB"`
	RedisReferenceDB int    `mapstructure:"REDIS_REFERENCE_DB"`
	RedisTaskQueueDB int    `mapstructure:"REDIS_TASK_QUEUE_DB"`

	// Supplier gateway configuration.
	SupplierEndpoint    string        `mapstructure:"SUPPLIER_ENDPOINT"`
	SupplierUsername    string        `mapstructure:"SUPPLIER_USERNAME"`
	SupplierPassword    string        `mapstructure:"SUPPLIER_PASSWORD"`
	SupplierCompanyCode string        `mapstructure:"SUPPLIER_COMPANY_CODE"`
	SupplierTimeout     time.Duration `mapstructure:"SUPPLIER_TIMEOUT"`
	SupplierMaxRetries  int           `mapstructure:"SUPPLIER_MAX_RETRIES"`
	SupplierRatePerSec  int           `mapstructure:"SUPPLIER_RATE_PER_SEC"`
	SupplierCompress    bool          `mapstructure:"SUPPLIER_COMPRESS"`

	// Offer token configuration.
	OfferTokenTTL time.Duration `mapstructure:"OFFER_TOKEN_TTL"`

	// Retry policy for retryable supplier failures inside one transition.
	RetryBaseDelay time.Duration `mapstructure:"RETRY_BASE_DELAY"`
	RetryMaxDelay  time.Duration `mapstructure:"RETRY_MAX_DELAY"`
	RetryAttempts  int           `mapstructure:"RETRY_ATTEMPTS"`

	// Stripe key for guest card holds.
	StripeKey string `mapstructure:"STRIPE_KEY"`

	// Currency conversion endpoint (best-effort FX quotes).
	FXEndpoint string        `mapstructure:"FX_ENDPOINT"`
	FXCacheTTL time.Duration `mapstructure:"FX_CACHE_TTL"`

	// Base currency the supplier settles in.
	BaseCurrency string `mapstructure:"BASE_CURRENCY"`

	// Firebase service-account credentials file for push notifications.
	FirebaseCredentials string `mapstructure:"FIREBASE_CREDENTIALS"`
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
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_REFERENCE_DB", 1)
	viper.SetDefault("REDIS_TASK_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("SUPPLIER_TIMEOUT", 30*time.Second)
	viper.SetDefault("SUPPLIER_MAX_RETRIES", 3)
	viper.SetDefault("SUPPLIER_RATE_PER_SEC", 10)
	viper.SetDefault("SUPPLIER_COMPRESS", true)
	viper.SetDefault("OFFER_TOKEN_TTL", 15*time.Minute)
	viper.SetDefault("RETRY_BASE_DELAY", 500*time.Millisecond)
	viper.SetDefault("RETRY_MAX_DELAY", 8*time.Second)
	viper.SetDefault("RETRY_ATTEMPTS", 4)
	viper.SetDefault("FX_CACHE_TTL", 15*time.Minute)
	viper.SetDefault("BASE_CURRENCY", "USD")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
