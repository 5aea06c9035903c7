package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port  string
	DBDSN string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTExpiry   time.Duration

	GeminiAPIKey string
	GeminiModel  string

	SMTPHost     string
	SMTPPort     int
	SMTPEmail    string
	SMTPPassword string
	MasterEmail  string

	PublicBaseURL     string
	DefaultDepartment string
	MappingPath       string
	ReportFontPath    string

	LogMode       string
	EnableMetrics bool
}

func Load() *Config {
	// A missing .env is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	config := &Config{
		Port:        getEnv("PORT", "8080"),
		DBDSN:       os.Getenv("DB_DSN"),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTIssuer:   getEnv("JWT_ISS", "campus-assets-api"),
		JWTAudience: getEnv("JWT_AUD", "campus-assets-api"),
		JWTExpiry:   8 * time.Hour,

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPEmail:    os.Getenv("SMTP_EMAIL"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MasterEmail:  os.Getenv("MASTER_EMAIL"),

		PublicBaseURL:     getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		DefaultDepartment: getEnv("DEFAULT_DEPARTMENT", "Electronics and Instrumentation Engineering"),
		MappingPath:       os.Getenv("MAPPING_PATH"),
		ReportFontPath:    os.Getenv("REPORT_FONT"),

		LogMode:       getEnv("LOG_MODE", "development"),
		EnableMetrics: os.Getenv("ENABLE_METRICS") == "true",
	}

	// Parse JWT expiry from environment if provided
	if expiryStr := os.Getenv("JWT_EXPIRY"); expiryStr != "" {
		if expiry, err := time.ParseDuration(expiryStr); err == nil {
			config.JWTExpiry = expiry
		}
	}

	return config
}

// LoadAndValidate loads the configuration and rejects values that would
// otherwise fail at first use rather than at startup.
func LoadAndValidate() (*Config, error) {
	config := Load()
	if config.DBDSN == "" {
		return nil, errors.New("DB_DSN is required")
	}
	if config.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must not be empty")
	}
	if config.JWTExpiry <= 0 {
		return nil, errors.New("JWT_EXPIRY must be positive")
	}
	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
