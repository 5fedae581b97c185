package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	StoreFile     = "file"
	StorePostgres = "postgres"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Generation
	LLMProvider           string
	GeminiPreferredModels []string
	OpenAIPreferredModels []string
	OpenAIBaseURL         string
	GeminiConcurrentReqs  int
	GeminiRequestsPerMin  int
	GeminiTemperature     float32
	GenerationTimeout     time.Duration

	// Notes
	NotesStore  string
	NotesFile   string
	DatabaseURL string

	// Redis
	RedisURL           string
	RateLimitPerMinute int

	// Uploads
	MaxPDFPages    int
	MaxUploadBytes int64

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		Env:      getEnvOrDefault("ENV", "development"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		LLMProvider:           strings.ToLower(getEnvOrDefault("LLM_PROVIDER", ProviderGemini)),
		GeminiPreferredModels: getEnvAsListOrDefault("GEMINI_PREFERRED_MODELS", nil),
		OpenAIPreferredModels: getEnvAsListOrDefault("OPENAI_PREFERRED_MODELS", nil),
		OpenAIBaseURL:         getEnvOrDefault("OPENAI_BASE_URL", ""),
		GeminiConcurrentReqs:  getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		GeminiRequestsPerMin:  getEnvAsIntOrDefault("GEMINI_REQUESTS_PER_MINUTE", 60),
		GeminiTemperature:     getEnvAsFloatOrDefault("GEMINI_TEMPERATURE", 0.3),
		GenerationTimeout:     getEnvAsDurationOrDefault("GENERATION_TIMEOUT", 3*time.Minute),

		NotesStore: strings.ToLower(getEnvOrDefault("NOTES_STORE", StoreFile)),
		NotesFile:  getEnvOrDefault("NOTES_FILE", "my_notes.json"),

		RedisURL:           getEnvOrDefault("REDIS_URL", ""),
		RateLimitPerMinute: getEnvAsIntOrDefault("RATE_LIMIT_PER_MINUTE", 20),

		MaxPDFPages:    getEnvAsIntOrDefault("MAX_PDF_PAGES", 40),
		MaxUploadBytes: int64(getEnvAsIntOrDefault("MAX_UPLOAD_BYTES", 20<<20)),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:8501"),
	}

	if cfg.NotesStore == StorePostgres {
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	}

	return cfg
}

// Validate rejects unknown provider and store names.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (want %s or %s)", c.LLMProvider, ProviderGemini, ProviderOpenAI)
	}
	switch c.NotesStore {
	case StoreFile, StorePostgres:
	default:
		return fmt.Errorf("unsupported NOTES_STORE %q (want %s or %s)", c.NotesStore, StoreFile, StorePostgres)
	}
	if c.GenerationTimeout <= 0 {
		return fmt.Errorf("GENERATION_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float32) float32 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 32)
	if err != nil {
		return defaultVal
	}
	return float32(f)
}

func getEnvAsDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvAsListOrDefault splits a comma-separated value, dropping blanks.
func getEnvAsListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
