package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/choprek/utils"
)

type Config struct {
	Port               string
	GinMode            string
	LogLevel           string
	JWTSecret          string
	CORSOrigin         string
	RateLimit          int
	ChangePollInterval time.Duration
	AuditBuffer        int
	AdminEmail         string
	AdminPassword      string
	DB                 DatabaseConfig
}

type DatabaseConfig struct {
	Driver   string // mysql | sqlite
	DSN      string
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

// LoadConfig membaca .env (jika ada) lalu environment variable.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found, using environment only")
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		GinMode:            getEnv("GIN_MODE", "debug"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		CORSOrigin:         getEnv("CORS_ORIGIN", "http://127.0.0.1:5500"),
		RateLimit:          getEnvInt("RATE_LIMIT", 50),
		ChangePollInterval: getEnvDuration("CHANGE_POLL_INTERVAL", 500*time.Millisecond),
		AuditBuffer:        getEnvInt("AUDIT_BUFFER", 256),
		AdminEmail:         os.Getenv("ADMIN_EMAIL"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
		DB: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "mysql"),
			DSN:      os.Getenv("DB_DSN"),
			User:     getEnv("DB_USER", "root"),
			Password: os.Getenv("DB_PASSWORD"),
			Host:     getEnv("DB_HOST", "127.0.0.1"),
			Port:     getEnv("DB_PORT", "3306"),
			Name:     getEnv("DB_NAME", "choprek"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		utils.ErrorLogger.Printf("Invalid value for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		utils.ErrorLogger.Printf("Invalid duration for %s: %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
