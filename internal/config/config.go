package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Provider names for the two supported LLM backends.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds the configuration for the application. Credentials are resolved
// here once and injected into constructors; no other package reads the
// environment.
type Config struct {
	Provider string

	// Gemini (multi-modal path)
	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiTTSModel   string
	GeminiImageModel string
	TTSVoice         string

	// OpenAI-compatible chat completions (text-only path)
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	DatabasePath    string
	DefaultLocation string

	// Telegram Config (optional for CLI, required for the bot)
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramListenAddr     string
	TelegramAllowedUserIDs []int64
	AdminTelegramID        int64
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	cfg := &Config{
		Provider:         getenvDefault("LLM_PROVIDER", ProviderGemini),
		GeminiTextModel:  getenvDefault("GEMINI_TEXT_MODEL", "gemini-3-flash-preview"),
		GeminiTTSModel:   getenvDefault("GEMINI_TTS_MODEL", "gemini-2.5-flash-preview-tts"),
		GeminiImageModel: getenvDefault("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		TTSVoice:         getenvDefault("TTS_VOICE", "Kore"),
		OpenAIBaseURL:    getenvDefault("OPENAI_BASE_URL", "https://api.groq.com/openai/v1"),
		OpenAIModel:      getenvDefault("OPENAI_MODEL", "llama-3.3-70b-versatile"),
		DatabasePath:     getenvDefault("DATABASE_PATH", "data/qihuang.db"),
		DefaultLocation:  getenvDefault("DEFAULT_LOCATION", "上海"),
	}

	switch cfg.Provider {
	case ProviderGemini:
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case ProviderOpenAI:
		cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q (want %q or %q)", cfg.Provider, ProviderGemini, ProviderOpenAI)
	}

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramWebhookURL = os.Getenv("TELEGRAM_WEBHOOK_URL")
	cfg.TelegramListenAddr = getenvDefault("TELEGRAM_LISTEN_ADDR", ":8080")

	if ids := os.Getenv("TELEGRAM_ALLOWED_USER_IDS"); ids != "" {
		for _, raw := range strings.Split(ids, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", raw, err)
			}
			cfg.TelegramAllowedUserIDs = append(cfg.TelegramAllowedUserIDs, id)
		}
	}
	if admin := os.Getenv("ADMIN_TELEGRAM_ID"); admin != "" {
		id, err := strconv.ParseInt(admin, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID %q: %w", admin, err)
		}
		cfg.AdminTelegramID = id
	}

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
