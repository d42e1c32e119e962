package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultMaxUploadBytes = 20 << 20

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv             string
	Port               string
	GeminiAPIKey       string
	GeminiBaseURL      string
	GeminiTextModel    string
	GeminiImageModel   string
	GeminiTimeout      time.Duration
	HTTPReadTimeout    time.Duration
	HTTPWriteTimeout   time.Duration
	HTTPIdleTimeout    time.Duration
	RateLimitPerMin    int
	CORSAllowedOrigins []string
	ExportPath         string
	EnhanceByDefault   bool
	MaxUploadBytes     int64
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		GeminiBaseURL:      getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiTextModel:    getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
		GeminiImageModel:   getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image-preview"),
		GeminiTimeout:      time.Second * time.Duration(getEnvInt("GEMINI_TIMEOUT_SECONDS", 120)),
		HTTPReadTimeout:    time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:   time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 180)),
		HTTPIdleTimeout:    time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:    getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		ExportPath:         getEnv("EXPORT_PATH", "./exports"),
		EnhanceByDefault:   getEnvBool("ENHANCE_BY_DEFAULT", true),
		MaxUploadBytes:     int64(getEnvInt("MAX_UPLOAD_BYTES", defaultMaxUploadBytes)),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY (or API_KEY) is required")
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
