package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"qihuang-chef/internal/config"

	"qihuang-chef/internal/shared"
)

// openaiClient speaks the OpenAI-compatible chat completions protocol (Groq,
// OpenAI, and friends). It has no native schema support: structured calls get
// the schema rendered into the prompt and json_object response formatting,
// which is a deliberately looser contract than the Gemini path. Speech, image
// and transcription are not served by this provider.
type openaiClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOpenAIClient creates a chat-completions client from injected configuration.
func NewOpenAIClient(cfg *config.Config) Client {
	return &openaiClient{
		apiKey:  cfg.OpenAIAPIKey,
		baseURL: cfg.OpenAIBaseURL,
		model:   cfg.OpenAIModel,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *openaiClient) GenerateText(ctx context.Context, prompt string) (ContentResponse, error) {
	return c.complete(ctx, prompt, false)
}

func (c *openaiClient) GenerateStructured(ctx context.Context, prompt string, schema *Schema) (ContentResponse, error) {
	full := fmt.Sprintf("%s\n\n只返回一个符合以下结构的 JSON 对象，不要包含其他文字：\n%s", prompt, schema.Skeleton())
	return c.complete(ctx, full, true)
}

func (c *openaiClient) SynthesizeSpeech(ctx context.Context, text string) (BinaryResponse, error) {
	return BinaryResponse{}, ErrUnsupported
}

func (c *openaiClient) GenerateImage(ctx context.Context, prompt string) (BinaryResponse, error) {
	return BinaryResponse{}, ErrUnsupported
}

func (c *openaiClient) Transcribe(ctx context.Context, audio []byte, mimeType string) (ContentResponse, error) {
	return ContentResponse{}, ErrUnsupported
}

func (c *openaiClient) complete(ctx context.Context, prompt string, jsonMode bool) (ContentResponse, error) {
	reqBody := map[string]interface{}{
		"model": c.model,
		"messages": []map[string]string{
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature": 0.1,
	}
	if jsonMode {
		reqBody["response_format"] = map[string]string{"type": "json_object"}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return ContentResponse{}, fmt.Errorf("chat completions api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	return ContentResponse{
		Content: completion.Choices[0].Message.Content,
		Usage: shared.TokenUsage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
			TotalTokens:      completion.Usage.TotalTokens,
			Model:            c.model,
		},
	}, nil
}
