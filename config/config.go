package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-wide settings. It is built once at startup and
// passed explicitly into each component; nothing reads the environment after
// Load returns.
type Config struct {
	Addr string

	GeminiAPIKey string
	GeminiModel  string
	AITimeout    time.Duration

	MaxUploadSize int64
	AllowedExts   []string
	UploadDir     string

	RenderDPI    int
	OCRLanguages []string
	OCRWorkers   int

	// StrictPages makes any single-page OCR failure abort the extraction.
	// The default tolerates failed pages and keeps going with the rest.
	StrictPages bool

	// TextLayerFastPath skips rasterization and OCR for PDFs that already
	// carry an embedded text layer.
	TextLayerFastPath bool

	LogLevel string
}

// Load reads .env (if present) and the environment. GEMINI_API_KEY is the
// only required setting.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, falling back to environment variables")
	}

	cfg := &Config{
		Addr:              getEnv("SERVER_ADDR", ":8080"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		AITimeout:         getDuration("AI_TIMEOUT", 20*time.Second),
		MaxUploadSize:     getInt64("MAX_UPLOAD_SIZE", 10*1024*1024),
		AllowedExts:       []string{".pdf", ".png", ".jpg", ".jpeg"},
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		RenderDPI:         getInt("RENDER_DPI", 200),
		OCRLanguages:      strings.Split(getEnv("OCR_LANGUAGES", "eng"), "+"),
		OCRWorkers:        getInt("OCR_WORKERS", 4),
		StrictPages:       getBool("OCR_STRICT_PAGES", false),
		TextLayerFastPath: getBool("TEXT_LAYER_FAST_PATH", false),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
