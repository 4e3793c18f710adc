package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dgallion1/pdfquery/internal/document"
	"github.com/dgallion1/pdfquery/internal/payload"
)

type Config struct {
	Port string

	// Service auth. Empty disables the auth middleware.
	ServiceAPIKey string

	// Completions provider
	ProviderAPIKey  string
	ProviderBaseURL string
	Model           string
	MaxTokens       int
	Temperature     float64

	// Context building
	SystemPrompt     string
	IncludeTextLayer bool
	ImageDetail      string

	// Document rendering
	DPI         int
	ImageFormat string

	// Upload limits
	MaxUploadBytes int64

	// Echo outgoing payloads to the log.
	Verbose bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		ServiceAPIKey: os.Getenv("PDFQUERY_API_KEY"),

		ProviderAPIKey:  envOr("OPENAI_API_KEY", os.Getenv("OPENROUTER_API_KEY")),
		ProviderBaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:           envOr("MODEL", "gpt-4o"),
		MaxTokens:       envInt("MAX_TOKENS", 4096),
		Temperature:     envFloat("TEMPERATURE", 0.0),

		SystemPrompt:     os.Getenv("SYSTEM_PROMPT"),
		IncludeTextLayer: envBool("INCLUDE_TEXT_LAYER", true),
		ImageDetail:      envOr("IMAGE_DETAIL", "high"),

		DPI:         envInt("DPI", 150),
		ImageFormat: envOr("IMAGE_FORMAT", "png"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		Verbose: envBool("VERBOSE", false),
	}

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 150
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}

	return cfg
}

func (c Config) Validate() error {
	if c.ProviderAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY (or OPENROUTER_API_KEY) is required")
	}
	if !payload.ImageDetail(c.ImageDetail).Valid() {
		return fmt.Errorf("IMAGE_DETAIL must be low, high or auto, got %q", c.ImageDetail)
	}
	if !document.ImageFormat(c.ImageFormat).Valid() {
		return fmt.Errorf("IMAGE_FORMAT must be png or jpeg, got %q", c.ImageFormat)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
