package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"resume-parser/internal/shared/telemetry"
)

const (
	defaultMaxUploadBytes = 10 << 20
	defaultParseTimeout   = 90 * time.Second
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	DatabaseURL     string

	LLMProvider          string
	LLMModel             string
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	OpenAITimeout        time.Duration
	GeminiAPIKey         string
	OCRLang              string
	TesseractPath        string
	TessdataDir          string
	MaxUploadBytes       int64
	ParseTimeout         time.Duration
	JWTSecret            string
	RateLimitParsePerMin int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.missing", map[string]any{"key": "DATABASE_URL", "env": env})
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		DatabaseURL:     dbURL,

		LLMProvider:          normalizeProvider(getEnv("LLM_PROVIDER", "openai")),
		LLMModel:             getEnv("LLM_MODEL", ""),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", ""),
		OpenAITimeout:        time.Duration(getInt("OPENAI_TIMEOUT_SECONDS", 60)) * time.Second,
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		OCRLang:              getEnv("OCR_LANG", "eng"),
		TesseractPath:        getEnv("TESSERACT_PATH", ""),
		TessdataDir:          getEnv("TESSDATA_DIR", ""),
		MaxUploadBytes:       int64(getInt("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
		ParseTimeout:         getDuration("PARSE_TIMEOUT", defaultParseTimeout),
		JWTSecret:            getEnv("JWT_SECRET", ""),
		RateLimitParsePerMin: getInt("RATE_LIMIT_PARSE_PER_MIN", 10),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		telemetry.Warn("config.invalid", map[string]any{"key": key, "value": raw})
		return def
	}
	return n
}

// getDuration accepts Go durations ("45s") or a bare number of seconds.
func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	telemetry.Warn("config.invalid", map[string]any{"key": key, "value": raw})
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gemini", "google":
		return "gemini"
	case "none", "off", "":
		return "none"
	default:
		return "openai"
	}
}
