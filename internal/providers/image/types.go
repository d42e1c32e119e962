package image

import (
	"context"

	"mockup/internal/domain"
	"mockup/internal/providers/genai"
)

// Service is the image half of the generation service: fusing an uploaded
// product into a scene and editing a prior result.
type Service interface {
	Fuse(ctx context.Context, prompt string, source domain.SourceImage) (domain.ResultImage, error)
	Edit(ctx context.Context, instruction string, prior domain.SourceImage) (domain.ResultImage, error)
}

// ContentGenerator is the transport the Gemini implementation depends on.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, req genai.GenerateContentRequest) (*genai.GenerateContentResponse, error)
}

// Action names used when wrapping transport failures.
const (
	ActionGenerate = "generate"
	ActionEdit     = "edit"
)
