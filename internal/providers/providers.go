package providers

import (
	"fmt"
	"net/http"

	"mockup/internal/infra"
	"mockup/internal/providers/genai"
	"mockup/internal/providers/image"
	"mockup/internal/providers/prompt"
)

// Gemini bundles the image and text services sharing one API client.
type Gemini struct {
	Client  *genai.Client
	Images  *image.GeminiService
	Prompts *prompt.GeminiProvider
}

// NewGemini builds both services from cfg.
func NewGemini(cfg *infra.Config, logger *infra.Logger) (*Gemini, error) {
	client, err := genai.NewClient(genai.Options{
		APIKey:     cfg.GeminiAPIKey,
		BaseURL:    cfg.GeminiBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.GeminiTimeout},
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	images, err := image.NewGeminiService(image.GeminiOptions{
		Client: client,
		Model:  cfg.GeminiImageModel,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("image service: %w", err)
	}
	prompts, err := prompt.NewGeminiProvider(prompt.GeminiOptions{
		Client: client,
		Model:  cfg.GeminiTextModel,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("prompt service: %w", err)
	}
	return &Gemini{Client: client, Images: images, Prompts: prompts}, nil
}
