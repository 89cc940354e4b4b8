package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Processor ProcessorConfig
	Jobs      JobsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// ProcessorConfig holds payment processor configuration
type ProcessorConfig struct {
	APIKey             string
	BaseURL            string
	WebhookSecret      string
	SignatureTolerance time.Duration
	AuthorizeTimeout   time.Duration
	CommitTimeout      time.Duration
}

// JobsConfig holds background job configuration
type JobsConfig struct {
	MonitorInterval     time.Duration
	StalenessThreshold  time.Duration
	MaxRecoveryAttempts int
	RefundAttempts      int
	RefundBackoff       time.Duration
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "fixer"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", "change-this-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		},
		Processor: ProcessorConfig{
			APIKey:             getEnv("PROCESSOR_API_KEY", ""),
			BaseURL:            getEnv("PROCESSOR_BASE_URL", "https://api.processor.test"),
			WebhookSecret:      getEnv("PROCESSOR_WEBHOOK_SECRET", ""),
			SignatureTolerance: getEnvAsDuration("PROCESSOR_SIGNATURE_TOLERANCE", 5*time.Minute),
			AuthorizeTimeout:   getEnvAsDuration("PROCESSOR_AUTHORIZE_TIMEOUT", 15*time.Second),
			CommitTimeout:      getEnvAsDuration("PAYMENT_COMMIT_TIMEOUT", 10*time.Second),
		},
		Jobs: JobsConfig{
			MonitorInterval:     getEnvAsDuration("ACCOUNT_MONITOR_INTERVAL", time.Minute),
			StalenessThreshold:  getEnvAsDuration("ONBOARDING_STALENESS_THRESHOLD", time.Hour),
			MaxRecoveryAttempts: getEnvAsInt("MAX_RECOVERY_ATTEMPTS", 3),
			RefundAttempts:      getEnvAsInt("REFUND_ATTEMPTS", 3),
			RefundBackoff:       getEnvAsDuration("REFUND_BACKOFF", 500*time.Millisecond),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
