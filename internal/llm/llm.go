package llm

import (
	"context"
	"errors"
	"strings"

	"qihuang-chef/internal/shared"
)

// ContentResponse contains generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// BinaryResponse contains a generated binary payload (audio or image bytes)
// with its declared MIME type.
type BinaryResponse struct {
	MIMEType string
	Data     []byte
	Usage    shared.TokenUsage
}

// ErrUnsupported is returned by providers that cannot serve a modality.
var ErrUnsupported = errors.New("operation not supported by this provider")

// Client is the provider-neutral surface for all model calls. Implementations
// must be safe for concurrent use; every call is independent and stateless.
type Client interface {
	// GenerateText runs a free-text completion.
	GenerateText(ctx context.Context, prompt string) (ContentResponse, error)
	// GenerateStructured requests output constrained to the given schema. How
	// strictly the schema is enforced is provider-dependent: Gemini attaches
	// it as a response schema, chat-completion providers only see it rendered
	// into the prompt.
	GenerateStructured(ctx context.Context, prompt string, schema *Schema) (ContentResponse, error)
	// SynthesizeSpeech returns raw audio bytes (PCM 24kHz mono, 16-bit).
	SynthesizeSpeech(ctx context.Context, text string) (BinaryResponse, error)
	// GenerateImage returns image bytes with their MIME type.
	GenerateImage(ctx context.Context, prompt string) (BinaryResponse, error)
	// Transcribe converts a recorded utterance into text.
	Transcribe(ctx context.Context, audio []byte, mimeType string) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// StripFences removes markdown code fences the model sometimes wraps around
// JSON payloads.
func StripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
