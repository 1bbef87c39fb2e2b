package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the portal server
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	JWTPasswordReset          string
	Database                  DatabaseConfig
	Redis                     RedisConfig
	Storage                   StorageConfig
	Log                       LogConfig
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	PasswordResetTokenExpiry  int
	MetricsEnabled            bool
	PresenceHeartbeat         time.Duration
	AppURL                    string
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

// RedisConfig holds the optional redis cache configuration. When disabled the
// server falls back to the in-memory cache.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// StorageConfig holds document file storage configuration
type StorageConfig struct {
	RootDir       string
	SignedURLTTL  time.Duration
	MaxUploadSize int64
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "careportal"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	passwordResetTokenExpiry, err := strconv.Atoi(getEnv("PASSWORD_RESET_TOKEN_EXPIRY_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid PASSWORD_RESET_TOKEN_EXPIRY_MINUTES: %w", err)
	}

	signedURLMinutes, err := strconv.Atoi(getEnv("SIGNED_URL_EXPIRY_MINUTES", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid SIGNED_URL_EXPIRY_MINUTES: %w", err)
	}

	maxUploadMB, err := strconv.Atoi(getEnv("MAX_UPLOAD_MB", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %w", err)
	}

	heartbeatSeconds, err := strconv.Atoi(getEnv("PRESENCE_HEARTBEAT_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid PRESENCE_HEARTBEAT_SECONDS: %w", err)
	}

	return &Config{
		Port:             getEnv("PORT", "3001"),
		Origin:           getEnv("ORIGIN", "http://localhost:4200"),
		Environment:      getEnv("APP_ENV", "development"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		JWTPasswordReset: getEnv("JWT_PASSWORD_SECRET", ""),
		Database:         dbConfig,
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Storage: StorageConfig{
			RootDir:       getEnv("STORAGE_ROOT", "./data/documents"),
			SignedURLTTL:  time.Duration(signedURLMinutes) * time.Minute,
			MaxUploadSize: int64(maxUploadMB) << 20,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		PasswordResetTokenExpiry:  passwordResetTokenExpiry,
		MetricsEnabled:            getEnv("METRICS_ENABLED", "true") == "true",
		PresenceHeartbeat:         time.Duration(heartbeatSeconds) * time.Second,
		AppURL:                    getEnv("APP_URL", "http://localhost:3001"),
	}, nil
}

// Validate checks the values the server cannot run without.
// Missing values are a hard startup failure.
func (c *Config) Validate() error {
	if c.Database.Name == "" || c.Database.Username == "" {
		return fmt.Errorf("database configuration is incomplete (DB_NAME, DB_USERNAME)")
	}
	if c.JWTSecret == "" || c.JWTRefreshSecret == "" {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET are required")
	}
	if c.JWTPasswordReset == "" {
		c.JWTPasswordReset = c.JWTSecret
	}
	return nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
