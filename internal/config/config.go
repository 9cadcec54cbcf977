package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Session  SessionConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	// Empty connection string runs the service without batch persistence;
	// batch status is then served from the in-memory repository.
	Connection string
}

type AIConfig struct {
	LLMProvider   string // "ollama", "openai", "volcano"
	LLMModel      string // e.g. "llama3", "doubao-seed-1.6-thinking"
	LLMBaseURL    string
	LLMAPIKey     string
	ImageProvider string // "openai", "volcano", "demo"
	ImageBaseURL  string
	ImageAPIKey   string
	ImageModel    string
	ImageSize     string // pixel size sent to the provider, e.g. "768x1024"
}

type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:      getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:    getEnv("LLM_BASE_URL", ""),
			LLMAPIKey:     getEnv("LLM_API_KEY", ""),
			ImageProvider: getEnv("IMAGE_PROVIDER", "demo"),
			ImageBaseURL:  getEnv("IMAGE_BASE_URL", ""),
			ImageAPIKey:   getEnv("IMAGE_API_KEY", ""),
			ImageModel:    getEnv("IMAGE_MODEL", "doubao-seedream-4-0-250828"),
			ImageSize:     getEnv("IMAGE_SIZE", "768x1024"),
		},
		Session: SessionConfig{
			TTL:             getEnvAsDuration("SESSION_TTL", time.Hour),
			CleanupInterval: getEnvAsDuration("SESSION_CLEANUP_INTERVAL", 10*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
