package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	Database                  DatabaseConfig
	Redis                     RedisConfig
	Beem                      BeemConfig
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// RedisConfig holds connection details for the Redis instance used to
// serialize slot conflict checks. An empty Addr disables locking.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	LockTTL  time.Duration
}

// BeemConfig holds Beem Africa messaging credentials. Empty credentials
// disable notification dispatch.
type BeemConfig struct {
	APIKey            string
	SecretKey         string
	SenderID          string
	WhatsAppNamespace string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load database configuration
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "mediremind"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	lockTTLSeconds, err := strconv.Atoi(getEnv("SLOT_LOCK_TTL_SECONDS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid SLOT_LOCK_TTL_SECONDS: %w", err)
	}

	// Locking is opt-in: without REDIS_ADDR the conflict check degrades
	// to plain check-then-insert rather than failing on an absent Redis.
	redisConfig := RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Username: getEnv("REDIS_USERNAME", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		LockTTL:  time.Duration(lockTTLSeconds) * time.Second,
	}

	beemConfig := BeemConfig{
		APIKey:            getEnv("BEEM_API_KEY", ""),
		SecretKey:         getEnv("BEEM_SECRET_KEY", ""),
		SenderID:          getEnv("BEEM_SENDER_ID", "MediRemind"),
		WhatsAppNamespace: getEnv("BEEM_WHATSAPP_NAMESPACE", ""),
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	// Return complete configuration
	return &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:4200"),
		Environment:               getEnv("APP_ENV", "development"),
		JWTSecret:                 getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		Database:                  dbConfig,
		Redis:                     redisConfig,
		Beem:                      beemConfig,
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
