package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Ai       AIConfig
	Events   EventsConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	// RedisURL enables the distributed pipeline lock when set.
	RedisURL string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type AuthConfig struct {
	JwtSecret     string
	TokenLifetime time.Duration
}

type StorageConfig struct {
	Provider     string // "gcs", "s3" or "local"
	Bucket       string
	Region       string
	Endpoint     string // S3-compatible endpoint override
	LocalDir     string
	RefreshAfter time.Duration
}

type AIConfig struct {
	LLMProvider     string // "ollama", "huggingface" or "vertex"
	LLMModel        string
	OllamaBaseURL   string
	HuggingFaceURL  string
	HuggingFaceKey  string
	GCPProjectID    string
	GCPRegion       string
	Timeout         time.Duration
	MaxOutputTokens int
	// ExtractorEnabled turns on PDF text extraction through Vertex AI.
	ExtractorEnabled bool
	ExtractorModel   string
}

type EventsConfig struct {
	ReplyFinalizedTopic string
	ConsumerLogPath     string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Legal Aid"),
		},
		Auth: AuthConfig{
			JwtSecret:     getEnv("JWT_SECRET", ""),
			TokenLifetime: time.Duration(getEnvAsInt("JWT_LIFETIME_HOURS", 24)) * time.Hour,
		},
		Storage: StorageConfig{
			Provider:     getEnv("STORAGE_PROVIDER", "local"),
			Bucket:       getEnv("STORAGE_BUCKET", getEnv("GCS_BUCKET", "")),
			Region:       getEnv("AWS_REGION", "us-east-1"),
			Endpoint:     getEnv("AWS_ENDPOINT_URL", ""),
			LocalDir:     getEnv("LOCAL_STORAGE_DIR", "uploads"),
			RefreshAfter: time.Duration(getEnvAsInt("ACCESS_URL_REFRESH_MINUTES", 45)) * time.Minute,
		},
		Ai: AIConfig{
			LLMProvider:      getEnv("LLM_PROVIDER", "vertex"),
			LLMModel:         getEnv("LLM_MODEL", "gemini-1.5-flash-001"),
			OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HuggingFaceURL:   getEnv("HUGGINGFACE_BASE_URL", ""),
			HuggingFaceKey:   getEnv("HUGGINGFACE_API_KEY", ""),
			GCPProjectID:     getEnv("GCP_PROJECT_ID", ""),
			GCPRegion:        getEnv("GCP_REGION", "asia-south1"),
			Timeout:          time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 120)) * time.Second,
			MaxOutputTokens:  getEnvAsInt("LLM_MAX_OUTPUT_TOKENS", 8192),
			ExtractorEnabled: getEnvAsBool("PDF_EXTRACTOR_ENABLED", true),
			ExtractorModel:   getEnv("PDF_EXTRACTOR_MODEL", "gemini-1.5-flash-001"),
		},
		Events: EventsConfig{
			ReplyFinalizedTopic: getEnv("REPLY_FINALIZED_TOPIC", "REPLY_FINALIZED"),
			ConsumerLogPath:     getEnv("CONSUMER_LOG_PATH", "logs/consumer.log"),
		},
	}
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
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
