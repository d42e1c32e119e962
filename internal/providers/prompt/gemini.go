package prompt

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"mockup/internal/domain"
	"mockup/internal/infra"
	"mockup/internal/providers/genai"
)

// DefaultModel is the text model used for enhancement and suggestions.
const DefaultModel = "gemini-2.5-flash"

// Fallback reasons reported through GeminiOptions.OnFallback.
const (
	ReasonServiceCall   = "service_call"
	ReasonEmptyText     = "empty_text"
	ReasonDecodePayload = "decode_payload"
	ReasonNoCategories  = "no_categories"
)

// ContentGenerator is the transport the Gemini provider depends on.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, req genai.GenerateContentRequest) (*genai.GenerateContentResponse, error)
}

type GeminiOptions struct {
	Client     ContentGenerator
	Model      string
	Logger     *infra.Logger
	Fallback   *StaticProvider
	OnFallback func(op, reason string, err error)
}

// GeminiProvider enhances prompts and generates suggestions with a text model.
// Every failure degrades silently to the static provider.
type GeminiProvider struct {
	client     ContentGenerator
	model      string
	logger     *infra.Logger
	fallback   *StaticProvider
	onFallback func(op, reason string, err error)
}

func NewGeminiProvider(opts GeminiOptions) (*GeminiProvider, error) {
	if opts.Client == nil {
		return nil, errors.New("prompt: gemini client is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewStaticProvider()
	}
	return &GeminiProvider{
		client:     opts.Client,
		model:      model,
		logger:     logger,
		fallback:   fallback,
		onFallback: opts.OnFallback,
	}, nil
}

// Enhance returns the elaborated prompt, or raw unchanged on any failure.
func (g *GeminiProvider) Enhance(ctx context.Context, raw string) string {
	if strings.TrimSpace(raw) == "" {
		return raw
	}
	req := genai.GenerateContentRequest{
		Contents:          []genai.Content{genai.UserContent(genai.TextPart(buildEnhanceUserPrompt(raw)))},
		SystemInstruction: &genai.Content{Parts: []genai.Part{genai.TextPart(enhanceSystemInstruction)}},
	}
	resp, err := g.client.GenerateContent(ctx, g.model, req)
	if err != nil {
		g.reportFallback("enhance", ReasonServiceCall, err)
		return g.fallback.Enhance(ctx, raw)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		g.reportFallback("enhance", ReasonEmptyText, nil)
		return g.fallback.Enhance(ctx, raw)
	}
	return text
}

// SuggestInitial returns scene ideas for Environment, Lighting and Style & Angle.
func (g *GeminiProvider) SuggestInitial(ctx context.Context) domain.SuggestionSet {
	set, err := g.suggest(ctx, "suggest_initial", initialSuggestionsPrompt, domain.InitialCategories, g.fallback.SuggestInitial(ctx))
	if err != nil {
		return g.fallback.SuggestInitial(ctx)
	}
	return set
}

// SuggestRefinements returns Visuals and Environment ideas for basePrompt.
func (g *GeminiProvider) SuggestRefinements(ctx context.Context, basePrompt string) domain.SuggestionSet {
	set, err := g.suggest(ctx, "suggest_refinements", buildRefinementSuggestionsPrompt(basePrompt), domain.RefinementCategories, g.fallback.SuggestRefinements(ctx, basePrompt))
	if err != nil {
		return g.fallback.SuggestRefinements(ctx, basePrompt)
	}
	return set
}

var errFallback = errors.New("prompt: fallback")

func (g *GeminiProvider) suggest(ctx context.Context, op, text string, categories []domain.Category, fallback domain.SuggestionSet) (domain.SuggestionSet, error) {
	req := genai.GenerateContentRequest{
		Contents: []genai.Content{genai.UserContent(genai.TextPart(text))},
		GenerationConfig: &genai.GenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   categorySchema(categories),
		},
	}
	resp, err := g.client.GenerateContent(ctx, g.model, req)
	if err != nil {
		g.reportFallback(op, ReasonServiceCall, err)
		return domain.SuggestionSet{}, errFallback
	}
	body := strings.TrimSpace(resp.Text())
	if body == "" {
		g.reportFallback(op, ReasonEmptyText, nil)
		return domain.SuggestionSet{}, errFallback
	}
	parsed, err := parseModelPayload[map[string][]string](body)
	if err != nil {
		g.reportFallback(op, ReasonDecodePayload, err)
		return domain.SuggestionSet{}, errFallback
	}
	set, matched := normalizeSuggestions(parsed, categories, fallback)
	if !matched {
		g.reportFallback(op, ReasonNoCategories, nil)
		return domain.SuggestionSet{}, errFallback
	}
	return set, nil
}

func (g *GeminiProvider) reportFallback(op, reason string, err error) {
	g.logger.Warn().
		Err(err).
		Str("op", op).
		Str("reason", reason).
		Str("model", g.model).
		Msg("prompt: falling back to static provider")
	if g.onFallback != nil {
		g.onFallback(op, reason, err)
	}
}

var (
	_ Enhancer  = (*GeminiProvider)(nil)
	_ Suggester = (*GeminiProvider)(nil)
)
