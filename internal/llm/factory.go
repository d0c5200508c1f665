package llm

import (
	"context"
	"fmt"

	"qihuang-chef/internal/config"
)

// NewClient builds the configured provider. The Gemini path is multi-modal;
// the OpenAI-compatible path serves text operations only.
func NewClient(ctx context.Context, cfg *config.Config) (Client, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
