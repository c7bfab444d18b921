package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// Face matching
	FaceMatchThreshold   float64       `env:"FACE_MATCH_THRESHOLD" envDefault:"0.6"`
	FaceDescriptorLength int           `env:"FACE_DESCRIPTOR_LENGTH" envDefault:"128"`
	FaceVerificationTTL  time.Duration `env:"FACE_VERIFICATION_TTL" envDefault:"2m"`

	// Attendance window and geofence cache
	AttendanceTimezone *time.Location `env:"ATTENDANCE_TIMEZONE" envDefault:"UTC"`
	GeofenceCacheTTL   time.Duration  `env:"GEOFENCE_CACHE_TTL" envDefault:"5m"`

	// Bearer tokens for students (issued by the auth service)
	JWTSigningKey string        `env:"JWT_SIGNING_KEY"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"geo-attendance"`
	JWTTTL        time.Duration `env:"JWT_TTL" envDefault:"12h"`

	// CORS
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvAsInt("REDIS_DB", 0),
		WebhookURL:           os.Getenv("WEBHOOK_URL"),
		WebhookSecret:        os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:       getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:    getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:     getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		FaceMatchThreshold:   getEnvAsFloat("FACE_MATCH_THRESHOLD", 0.6),
		FaceDescriptorLength: getEnvAsInt("FACE_DESCRIPTOR_LENGTH", 128),
		FaceVerificationTTL:  getEnvAsDuration("FACE_VERIFICATION_TTL", 2*time.Minute),
		GeofenceCacheTTL:     getEnvAsDuration("GEOFENCE_CACHE_TTL", 5*time.Minute),
		JWTSigningKey:        os.Getenv("JWT_SIGNING_KEY"),
		JWTIssuer:            getEnv("JWT_ISSUER", "geo-attendance"),
		JWTTTL:               getEnvAsDuration("JWT_TTL", 12*time.Hour),
		AllowedOrigins:       getEnvAsList("CORS_ALLOWED_ORIGINS"),
		APIKeys:              getEnvAsList("API_KEYS"),
	}

	loc, err := time.LoadLocation(getEnv("ATTENDANCE_TIMEZONE", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_TIMEZONE: %w", err)
	}
	cfg.AttendanceTimezone = loc

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.JWTSigningKey == "" {
		return nil, fmt.Errorf("JWT_SIGNING_KEY environment variable is required")
	}
	if cfg.FaceMatchThreshold <= 0 {
		return nil, fmt.Errorf("FACE_MATCH_THRESHOLD must be positive, got %v", cfg.FaceMatchThreshold)
	}
	if cfg.FaceDescriptorLength <= 0 {
		return nil, fmt.Errorf("FACE_DESCRIPTOR_LENGTH must be positive, got %d", cfg.FaceDescriptorLength)
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat возвращает значение переменной окружения как float64 или значение по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsList разбирает список значений, разделенных запятыми
func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
