package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LLM_PROVIDER", "GEMINI_API_KEY", "GEMINI_TEXT_MODEL", "GEMINI_TTS_MODEL",
		"GEMINI_IMAGE_MODEL", "TTS_VOICE", "OPENAI_API_KEY", "OPENAI_BASE_URL",
		"OPENAI_MODEL", "DATABASE_PATH", "DEFAULT_LOCATION", "TELEGRAM_BOT_TOKEN",
		"TELEGRAM_WEBHOOK_URL", "TELEGRAM_LISTEN_ADDR", "TELEGRAM_ALLOWED_USER_IDS",
		"ADMIN_TELEGRAM_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestNewFromEnvGeminiDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "test-key", cfg.GeminiAPIKey)
	assert.Equal(t, "gemini-3-flash-preview", cfg.GeminiTextModel)
	assert.Equal(t, "gemini-2.5-flash-preview-tts", cfg.GeminiTTSModel)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.GeminiImageModel)
	assert.Equal(t, "Kore", cfg.TTSVoice)
	assert.Equal(t, "data/qihuang.db", cfg.DatabasePath)
	assert.Equal(t, "上海", cfg.DefaultLocation)
	assert.Equal(t, ":8080", cfg.TelegramListenAddr)
}

func TestNewFromEnvMissingGeminiKey(t *testing.T) {
	clearEnv(t)

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestNewFromEnvOpenAIProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "groq-key")

	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "groq-key", cfg.OpenAIAPIKey)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.OpenAIBaseURL)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.OpenAIModel)
}

func TestNewFromEnvMissingOpenAIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "openai")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestNewFromEnvUnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("LLM_PROVIDER", "bedrock")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown LLM_PROVIDER")
}

func TestNewFromEnvTelegramSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("TELEGRAM_WEBHOOK_URL", "https://example.com/webhook")
	t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "111, 222,333")
	t.Setenv("ADMIN_TELEGRAM_ID", "111")

	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []int64{111, 222, 333}, cfg.TelegramAllowedUserIDs)
	assert.Equal(t, int64(111), cfg.AdminTelegramID)
}

func TestNewFromEnvBadAllowedIDs(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "111,abc")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_ALLOWED_USER_IDS")
}
