package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Client   ClientConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	UploadDir          string
	MaxUploadBytes     int
	NatsURL            string
	RedisURL           string
	SessionStore       string // "memory" or "redis"
	SessionTTL         time.Duration
	AnswerTopic        string // watermill topic for recorded answers
	TracingEnabled     bool
	OtlpEndpoint       string
}

type DatabaseConfig struct {
	Driver     string // "sqlite" or "postgres"
	Connection string
}

// AIConfig holds the defaults used until a model config is saved through the API.
type AIConfig struct {
	LLMProvider string // "ollama", "openai" or "" (local generator only)
	LLMModel    string
	BaseURL     string
	Timeout     time.Duration
}

// ClientConfig is read by the terminal quiz client.
type ClientConfig struct {
	APIBaseURL     string
	StoreDriver    string // "sqlite", "postgres", "redis" or "memory"
	StoreDSN       string
	RequestTimeout time.Duration
	LogFilePath    string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "5001"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
			MaxUploadBytes:     getEnvAsInt("MAX_UPLOAD_BYTES", 1024*1024),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionStore:       getEnv("SESSION_STORE", "memory"),
			SessionTTL:         getEnvAsDuration("SESSION_TTL", time.Hour),
			AnswerTopic:        getEnv("ANSWER_TOPIC_NAME", "ANSWER_RECORDED"),
			TracingEnabled:     getEnvAsBool("OTEL_ENABLED", false),
			OtlpEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			Connection: getEnv("DB_CONNECTION_STRING", "data/quiz.db"),
		},
		Ai: AIConfig{
			LLMProvider: getEnv("LLM_PROVIDER", ""),
			LLMModel:    getEnv("LLM_MODEL", "llama3"),
			BaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 120*time.Second),
		},
		Client: ClientConfig{
			APIBaseURL:     getEnv("QUIZ_API_BASE_URL", "http://localhost:5001"),
			StoreDriver:    getEnv("QUIZ_STORE_DRIVER", "sqlite"),
			StoreDSN:       getEnv("QUIZ_STORE_DSN", "data/client.db"),
			RequestTimeout: getEnvAsDuration("QUIZ_REQUEST_TIMEOUT", 30*time.Second),
			LogFilePath:    getEnv("QUIZ_LOG_FILE_PATH", "logs/quiz-client.log"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return fallback
	}
}

// getEnvAsDuration accepts Go durations ("90s") or a bare number of seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
