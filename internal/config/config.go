package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App   AppConfig
	Agent AgentConfig
	Serp  SerpConfig
	Ai    AIConfig
	Keys  APIKeys
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type AgentConfig struct {
	CheckpointDir     string
	CheckpointBackend string // "file" or "redis"
	ProgressDir       string
	EnablePrioritize  bool
	EnrichImages      bool
}

type SerpConfig struct {
	Zone          string
	SearchTimeout time.Duration
	ImageTimeout  time.Duration
}

type AIConfig struct {
	LLMProvider   string // "openai" or "ollama"
	LLMModel      string // e.g. "gpt-4o-mini", "llama3"
	Temperature   float64
	OllamaBaseURL string
	LLMTimeout    time.Duration
}

type APIKeys struct {
	OpenAI     string
	BrightData string
	SerpAPI    string
	JWTSecret  string
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
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Agent: AgentConfig{
			CheckpointDir:     getEnv("CHECKPOINT_DIR", "storage/checkpoints"),
			CheckpointBackend: getEnv("CHECKPOINT_BACKEND", "file"),
			ProgressDir:       getEnv("PROGRESS_DIR", "storage/progress"),
			EnablePrioritize:  getEnvAsBool("AGENT_ENABLE_PRIORITIZE", false),
			EnrichImages:      getEnvAsBool("AGENT_ENRICH_IMAGES", false),
		},
		Serp: SerpConfig{
			Zone:          getEnv("SERP_ZONE", "serp_api"),
			SearchTimeout: getEnvAsSeconds("HTTP_TIMEOUT_SEARCH", 6),
			ImageTimeout:  getEnvAsSeconds("HTTP_TIMEOUT_IMAGE", 3),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "openai"),
			LLMModel:      getEnv("LLM_MODEL", getEnv("OPENAI_MODEL", "gpt-4o-mini")),
			Temperature:   getEnvAsFloat("OPENAI_TEMPERATURE", 0.3),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMTimeout:    getEnvAsSeconds("HTTP_TIMEOUT_LLM", 10),
		},
		Keys: APIKeys{
			OpenAI:     getEnv("OPEN_AI_KEY", getEnv("OPENAI_API_KEY", "")),
			BrightData: getEnv("BRIGHT_DATA_API_KEY", ""),
			SerpAPI:    getEnv("SERPAPI_API_KEY", ""),
			JWTSecret:  getEnv("JWT_SECRET", ""),
		},
	}
}

// SerpAPIKey returns the SERP credential, preferring the BrightData key
// and falling back to the legacy SERPAPI key name.
func (c *Config) SerpAPIKey() string {
	if c.Keys.BrightData != "" {
		return c.Keys.BrightData
	}
	return c.Keys.SerpAPI
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
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

func getEnvAsSeconds(key string, fallbackSeconds int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallbackSeconds)) * time.Second
}
