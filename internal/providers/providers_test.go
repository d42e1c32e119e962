package providers

import (
	"errors"
	"testing"
	"time"

	"mockup/internal/infra"
	"mockup/internal/providers/genai"
)

func TestNewGemini(t *testing.T) {
	cfg := &infra.Config{
		GeminiAPIKey:     "key",
		GeminiImageModel: "image-model",
		GeminiTextModel:  "text-model",
		GeminiTimeout:    time.Second,
	}
	g, err := NewGemini(cfg, nil)
	if err != nil {
		t.Fatalf("NewGemini returned error: %v", err)
	}
	if g.Images.Model() != "image-model" {
		t.Fatalf("image model = %q", g.Images.Model())
	}
	if g.Client == nil || g.Prompts == nil {
		t.Fatalf("incomplete bundle: %+v", g)
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(&infra.Config{}, nil)
	if !errors.Is(err, genai.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
}
