// Package chef is the plan request service: it translates user focus tags,
// preferences and contextual signals into model requests and turns the
// responses into the typed data model.
package chef

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"qihuang-chef/internal/audio"
	"qihuang-chef/internal/llm"
	"qihuang-chef/internal/plan"
	"qihuang-chef/internal/shared"
)

// PlanRequest carries everything the weekly plan prompt needs.
type PlanRequest struct {
	Focus       []plan.Focus
	Location    string
	Preferences string
}

// Speech is decoded TTS output: the raw PCM payload plus normalized samples.
type Speech struct {
	PCM        []byte
	Samples    []float32
	SampleRate int
}

// Service runs all model-facing operations. Every method is stateless and
// safe to call concurrently.
type Service struct {
	client llm.Client
	log    zerolog.Logger
	now    func() time.Time
}

// NewService creates the service around an LLM client.
func NewService(client llm.Client, logger zerolog.Logger) *Service {
	return &Service{
		client: client,
		log:    logger,
		now:    time.Now,
	}
}

// WeeklyPlan requests a schema-constrained weekly meal plan. Any failure is a
// *GenerationError and must not disturb previously committed state.
func (s *Service) WeeklyPlan(ctx context.Context, req PlanRequest) (*plan.WeeklyPlan, shared.CallMeta, error) {
	start := s.now()
	meta := shared.CallMeta{Operation: "weekly_plan"}

	resp, err := s.client.GenerateStructured(ctx, buildWeeklyPlanPrompt(req), weeklyPlanSchema())
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)
	if err != nil {
		return nil, meta, &GenerationError{Err: err}
	}

	p, err := plan.Decode([]byte(llm.StripFences(resp.Content)))
	if err != nil {
		s.log.Warn().Err(err).Msg("weekly plan response rejected")
		return nil, meta, &GenerationError{Err: err}
	}

	s.log.Info().
		Str("theme", p.Theme).
		Int("days", len(p.Menu)).
		Dur("latency", meta.Latency).
		Msg("weekly plan generated")
	return p, meta, nil
}

// fallbackRecommendation is served whenever the decorative recommendation
// call fails for any reason.
var fallbackRecommendation = plan.TodayRecommendation{
	Name:    "温水姜茶",
	Benefit: "驱寒暖胃",
	Reason:  "系统忙碌中，建议先饮一杯温水保护肠胃。",
}

// TodayRecommendation suggests one dish for today. It never fails: on any
// error the fixed warming fallback is returned instead.
func (s *Service) TodayRecommendation(ctx context.Context, focus []plan.Focus) (plan.TodayRecommendation, shared.CallMeta) {
	start := s.now()
	meta := shared.CallMeta{Operation: "today_recommendation"}

	now := s.now()
	labels := make([]string, len(focus))
	for i, f := range focus {
		labels[i] = f.Label()
	}
	prompt := fmt.Sprintf("今天是 %d月%d日 (%s)。用户关注：%s。请推荐一道特别适合今日食用的药膳 JSON。",
		int(now.Month()), now.Day(), plan.SeasonFor(now), strings.Join(labels, ", "))

	resp, err := s.client.GenerateStructured(ctx, prompt, recommendationSchema())
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)
	if err != nil {
		s.log.Debug().Err(err).Msg("recommendation call failed, serving fallback")
		return fallbackRecommendation, meta
	}

	var rec plan.TodayRecommendation
	if err := json.Unmarshal([]byte(llm.StripFences(resp.Content)), &rec); err != nil || rec.Name == "" {
		s.log.Debug().Err(err).Msg("recommendation response rejected, serving fallback")
		return fallbackRecommendation, meta
	}
	return rec, meta
}

// Ask runs a free-text question past the chef persona. The length target is a
// prompt-level hint only.
func (s *Service) Ask(ctx context.Context, question, contextInfo string) (string, shared.CallMeta, error) {
	start := s.now()
	meta := shared.CallMeta{Operation: "ask_chef"}

	prompt := fmt.Sprintf("你是一位专业的中医药膳大厨。背景：%s。提问：%s。请给出极其具体的厨艺或食养指导（150字内）。",
		contextInfo, question)

	resp, err := s.client.GenerateText(ctx, prompt)
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)
	if err != nil {
		return "", meta, &GenerationError{Err: err}
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", meta, &GenerationError{Err: fmt.Errorf("empty answer")}
	}
	return resp.Content, meta, nil
}

// Speak synthesizes the text as speech and decodes the 16-bit PCM payload
// into normalized samples. A missing payload is an *AudioError.
func (s *Service) Speak(ctx context.Context, text string) (Speech, shared.CallMeta, error) {
	start := s.now()
	meta := shared.CallMeta{Operation: "speak"}

	resp, err := s.client.SynthesizeSpeech(ctx, text)
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)
	if err != nil {
		return Speech{}, meta, &AudioError{Err: err}
	}
	if len(resp.Data) == 0 {
		return Speech{}, meta, &AudioError{Err: fmt.Errorf("no audio payload returned")}
	}

	samples, err := audio.DecodePCM16(resp.Data)
	if err != nil {
		return Speech{}, meta, &AudioError{Err: err}
	}
	return Speech{PCM: resp.Data, Samples: samples, SampleRate: audio.SampleRate}, meta, nil
}

// StepImage generates an illustrative photo for a single prep or cooking
// step. A missing payload is an *ImageError.
func (s *Service) StepImage(ctx context.Context, ownerLabel, instruction string) (plan.Illustration, shared.CallMeta, error) {
	start := s.now()
	meta := shared.CallMeta{Operation: "step_image"}

	prompt := fmt.Sprintf(
		`Gourmet food prep, macro photography: %q. Close-up visual of: %s. Cinematic soft lighting, professional chef kitchen background, ultra-high definition. Aspect ratio 3:4.`,
		ownerLabel, instruction)

	resp, err := s.client.GenerateImage(ctx, prompt)
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)
	if err != nil {
		return plan.Illustration{}, meta, &ImageError{Err: err}
	}
	if len(resp.Data) == 0 {
		return plan.Illustration{}, meta, &ImageError{Err: fmt.Errorf("no image payload returned")}
	}
	return plan.Illustration{MIMEType: resp.MIMEType, Data: resp.Data}, meta, nil
}

// Transcribe turns a recorded utterance into text. An empty transcript is not
// an error; the capture simply ended without speech.
func (s *Service) Transcribe(ctx context.Context, audioData []byte, mimeType string) (string, shared.CallMeta, error) {
	start := s.now()
	meta := shared.CallMeta{Operation: "transcribe"}

	resp, err := s.client.Transcribe(ctx, audioData, mimeType)
	meta.Usage = resp.Usage
	meta.Latency = time.Since(start)
	if err != nil {
		return "", meta, fmt.Errorf("transcription failed: %w", err)
	}
	return strings.TrimSpace(resp.Content), meta, nil
}

func buildWeeklyPlanPrompt(req PlanRequest) string {
	labels := make([]string, len(req.Focus))
	for i, f := range req.Focus {
		labels[i] = f.Label()
	}

	prefs := req.Preferences
	if strings.TrimSpace(prefs) == "" {
		prefs = "无"
	}
	location := req.Location
	if strings.TrimSpace(location) == "" {
		location = "未知"
	}

	return fmt.Sprintf(`你是一位顶级中医药食同源主厨，专为追求效率的职场人规划一周健康膳食。

【核心质量指令】：
1. **新手友好型步骤**：在生成 steps 时，不要使用“适量”、“少许”等模糊词（除非是调料）。必须描述火候、切割规格和感官判断。
2. **精准备菜量化**：weekendPrepOperations 必须包含具体的克数或数量指导。
3. **高效复用逻辑**：工作日餐食应说明如何复用周末处理好的半成品。
4. **无食材限制**：不受食材数量限制，追求正统疗效。

用户所在地：%s。
用户方向：%s。
偏好：%s。`, location, strings.Join(labels, "、"), prefs)
}
