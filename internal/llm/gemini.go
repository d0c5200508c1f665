package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"qihuang-chef/internal/config"
	"qihuang-chef/internal/shared"
)

// geminiClient talks to the Google Gemini API. Text calls can carry a native
// response schema; speech, image and transcription use the multi-modal models.
type geminiClient struct {
	client     *genai.Client
	textModel  string
	ttsModel   string
	imageModel string
	ttsVoice   string
}

// NewGeminiClient creates a new Gemini API client from injected configuration.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &geminiClient{
		client:     client,
		textModel:  cfg.GeminiTextModel,
		ttsModel:   cfg.GeminiTTSModel,
		imageModel: cfg.GeminiImageModel,
		ttsVoice:   cfg.TTSVoice,
	}, nil
}

func (c *geminiClient) GenerateText(ctx context.Context, prompt string) (ContentResponse, error) {
	model := c.client.GenerativeModel(c.textModel)
	return c.generate(ctx, model, c.textModel, genai.Text(prompt))
}

func (c *geminiClient) GenerateStructured(ctx context.Context, prompt string, schema *Schema) (ContentResponse, error) {
	model := c.client.GenerativeModel(c.textModel)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = toGenaiSchema(schema)
	return c.generate(ctx, model, c.textModel, genai.Text(prompt))
}

func (c *geminiClient) generate(ctx context.Context, model *genai.GenerativeModel, modelName string, parts ...genai.Part) (ContentResponse, error) {
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return ContentResponse{}, fmt.Errorf("generated content is not text")
	}

	return ContentResponse{
		Content: string(text),
		Usage:   usageOf(resp, modelName),
	}, nil
}

// SynthesizeSpeech asks the TTS model to read the text. The voice is steered
// through the instruction since this API version has no dedicated voice field.
func (c *geminiClient) SynthesizeSpeech(ctx context.Context, text string) (BinaryResponse, error) {
	model := c.client.GenerativeModel(c.ttsModel)
	prompt := fmt.Sprintf("用温柔大厨语气（声线：%s）读：%s", c.ttsVoice, text)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return BinaryResponse{}, fmt.Errorf("failed to synthesize speech: %w", err)
	}
	blob, err := firstBlob(resp)
	if err != nil {
		return BinaryResponse{}, err
	}
	return BinaryResponse{
		MIMEType: blob.MIMEType,
		Data:     blob.Data,
		Usage:    usageOf(resp, c.ttsModel),
	}, nil
}

func (c *geminiClient) GenerateImage(ctx context.Context, prompt string) (BinaryResponse, error) {
	model := c.client.GenerativeModel(c.imageModel)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return BinaryResponse{}, fmt.Errorf("failed to generate image: %w", err)
	}
	blob, err := firstBlob(resp)
	if err != nil {
		return BinaryResponse{}, err
	}
	return BinaryResponse{
		MIMEType: blob.MIMEType,
		Data:     blob.Data,
		Usage:    usageOf(resp, c.imageModel),
	}, nil
}

func (c *geminiClient) Transcribe(ctx context.Context, audio []byte, mimeType string) (ContentResponse, error) {
	model := c.client.GenerativeModel(c.textModel)
	return c.generate(ctx, model, c.textModel,
		genai.Text("请将这段语音逐字转写为中文文本，只返回转写内容，不要任何解释。"),
		genai.Blob{MIMEType: mimeType, Data: audio},
	)
}

// Close closes the underlying Gemini client.
func (c *geminiClient) Close() error {
	return c.client.Close()
}

func firstBlob(resp *genai.GenerateContentResponse) (genai.Blob, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return genai.Blob{}, fmt.Errorf("no content generated")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok {
			return blob, nil
		}
	}
	return genai.Blob{}, fmt.Errorf("no binary payload in response")
}

func usageOf(resp *genai.GenerateContentResponse, model string) shared.TokenUsage {
	usage := shared.TokenUsage{Model: model}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return usage
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{Description: s.Description}
	switch s.Type {
	case TypeObject:
		out.Type = genai.TypeObject
		out.Required = s.Required
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	case TypeArray:
		out.Type = genai.TypeArray
		out.Items = toGenaiSchema(s.Items)
	default:
		out.Type = genai.TypeString
	}
	return out
}
