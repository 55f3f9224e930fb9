package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// PlaceholderOpenAIKey is the value shipped in example env files.
const PlaceholderOpenAIKey = "your-openai-api-key-here"

// Config holds application configuration.
type Config struct {
	AppName       string
	AppVersion    string
	Environment   string
	HTTPAddr      string
	AuthJWTSecret string

	Observability ObservabilityConfig

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	LLM       LLMConfig
	RateLimit RateLimitConfig
}

// ObservabilityConfig feeds the logger, tracer and meter providers.
type ObservabilityConfig struct {
	DeploymentEnv      string
	LogLevel           string
	LogFormat          string
	OtelEnabled        bool
	OtelEndpoint       string
	OtelProtocol       string
	OtelSamplingRatio  float64
	SlowQueryThreshold time.Duration
}

type LLMConfig struct {
	Provider          string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	GeminiAPIKey      string
	GeminiModel       string
	GenerationTimeout time.Duration
}

type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GenerateRate  float64
	GenerateBurst int

	GenerationLockTTLSeconds int
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:       getenv("APP_SERVICE", "promptinvoice"),
		AppVersion:    getenv("APP_VERSION", "0.1.0"),
		Environment:   getenv("ENVIRONMENT", "development"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		AuthJWTSecret: strings.TrimSpace(getenv("AUTH_JWT_SECRET", "")),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "promptinvoice"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 20),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 60),

		Observability: ObservabilityConfig{
			DeploymentEnv:      strings.TrimSpace(getenv("DEPLOYMENT_ENV", "")),
			LogLevel:           strings.ToLower(strings.TrimSpace(getenv("LOG_LEVEL", "info"))),
			LogFormat:          strings.ToLower(strings.TrimSpace(getenv("LOG_FORMAT", "json"))),
			OtelEnabled:        getenvBool("OTEL_ENABLED", false),
			OtelEndpoint:       strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_ENDPOINT", getenv("OTLP_ENDPOINT", "localhost:4317"))),
			OtelProtocol:       strings.ToLower(strings.TrimSpace(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"))),
			OtelSamplingRatio:  getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
			SlowQueryThreshold: time.Duration(getenvInt("DATABASE_SLOW_QUERY_MS", 200)) * time.Millisecond,
		},
		LLM: LLMConfig{
			Provider:          normalizeProvider(getenv("LLM_PROVIDER", ProviderOpenAI)),
			OpenAIAPIKey:      strings.TrimSpace(getenv("OPENAI_API_KEY", "")),
			OpenAIModel:       getenv("OPENAI_MODEL", "gpt-3.5-turbo"),
			OpenAIBaseURL:     strings.TrimSpace(getenv("OPENAI_BASE_URL", "")),
			GeminiAPIKey:      strings.TrimSpace(getenv("GEMINI_API_KEY", "")),
			GeminiModel:       getenv("GEMINI_MODEL", "gemini-1.5-flash"),
			GenerationTimeout: time.Duration(getenvInt("GENERATION_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:                  getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:                strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "localhost:6379")),
			RedisPassword:            getenv("RATE_LIMIT_REDIS_PASSWORD", ""),
			RedisDB:                  getenvInt("RATE_LIMIT_REDIS_DB", 0),
			GenerateRate:             getenvFloat("RATE_LIMIT_GENERATE_RATE", 0.2),
			GenerateBurst:            getenvInt("RATE_LIMIT_GENERATE_BURST", 5),
			GenerationLockTTLSeconds: getenvInt("RATE_LIMIT_GENERATION_LOCK_TTL_SECONDS", 120),
		},
	}

	return cfg
}

// IsProduction reports whether the service runs in the production environment.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ProviderGemini:
		return ProviderGemini
	default:
		return ProviderOpenAI
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
