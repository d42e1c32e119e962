package image

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

// DefaultModel is the multimodal model used for fusion and edits.
const DefaultModel = "gemini-2.5-flash-image-preview"

type GeminiOptions struct {
	Client ContentGenerator
	Model  string
	Logger *infra.Logger
}

// GeminiService implements Service against the Gemini generateContent API.
type GeminiService struct {
	client ContentGenerator
	model  string
	logger *infra.Logger
}

func NewGeminiService(opts GeminiOptions) (*GeminiService, error) {
	if opts.Client == nil {
		return nil, errors.New("image: gemini client is required")
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
	return &GeminiService{client: opts.Client, model: model, logger: logger}, nil
}

// Model returns the configured model identifier.
func (g *GeminiService) Model() string {
	return g.model
}

// Fuse composites source into the described scene.
func (g *GeminiService) Fuse(ctx context.Context, prompt string, source domain.SourceImage) (domain.ResultImage, error) {
	parts := []genai.Part{
		genai.InlinePart(source.Data, source.MIMEType),
		genai.TextPart(BuildFusionInstruction(prompt)),
	}
	return g.call(ctx, parts, ActionGenerate)
}

// Edit applies a free-form instruction to a prior result.
func (g *GeminiService) Edit(ctx context.Context, instruction string, prior domain.SourceImage) (domain.ResultImage, error) {
	parts := []genai.Part{
		genai.InlinePart(prior.Data, prior.MIMEType),
		genai.TextPart(instruction),
	}
	return g.call(ctx, parts, ActionEdit)
}

func (g *GeminiService) call(ctx context.Context, parts []genai.Part, action string) (domain.ResultImage, error) {
	req := genai.GenerateContentRequest{
		Contents: []genai.Content{genai.UserContent(parts...)},
		GenerationConfig: &genai.GenerationConfig{
			ResponseModalities: []string{genai.ModalityImage, genai.ModalityText},
		},
	}
	resp, err := g.client.GenerateContent(ctx, g.model, req)
	if err != nil {
		g.logger.Error().Err(err).Str("action", action).Str("model", g.model).Msg("image: service call failed")
		return domain.ResultImage{}, &domain.ServiceCallError{Action: action, Err: err}
	}
	result, err := ExtractImage(resp)
	if err != nil {
		if !domain.IsServiceFailure(err) {
			err = &domain.ServiceCallError{Action: action, Err: err}
		}
		g.logger.Warn().Err(err).Str("action", action).Str("model", g.model).Msg("image: response rejected")
		return domain.ResultImage{}, err
	}
	return result, nil
}

// ExtractImage applies the response interpretation policy: block and flag
// checks first, then the first inline segment wins, then conversational text
// becomes an error.
func ExtractImage(resp *genai.GenerateContentResponse) (domain.ResultImage, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if reason := resp.BlockReason(); reason != "" {
			return domain.ResultImage{}, &domain.GenerationBlockedError{Reason: reason}
		}
		return domain.ResultImage{}, domain.ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	switch candidate.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonRecitation:
		return domain.ResultImage{}, &domain.ResponseFlaggedError{Reason: candidate.FinishReason}
	}

	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil {
				// an empty inline segment still ends the scan
				if !part.HasInlineData() {
					break
				}
				data, err := part.InlineData.Decode()
				if err != nil {
					return domain.ResultImage{}, err
				}
				return domain.ResultImage{Data: data, MIMEType: part.InlineData.MimeType}, nil
			}
			text.WriteString(part.Text)
		}
	}

	if answer := strings.TrimSpace(text.String()); answer != "" {
		return domain.ResultImage{}, &domain.UnexpectedTextError{Text: answer}
	}
	return domain.ResultImage{}, domain.ErrNoImageProduced
}

var _ Service = (*GeminiService)(nil)
