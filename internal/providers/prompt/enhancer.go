package prompt

import (
	"context"

	"mockup/internal/domain"
)

// Enhancer rewrites a raw scene description into an elaborated photography
// prompt. Implementations never fail: on any problem they return raw.
type Enhancer interface {
	Enhance(ctx context.Context, raw string) string
}

// Suggester produces categorized idea phrases. Implementations never fail
// and never return an empty set.
type Suggester interface {
	SuggestInitial(ctx context.Context) domain.SuggestionSet
	SuggestRefinements(ctx context.Context, basePrompt string) domain.SuggestionSet
}

// StaticProvider is the offline provider: enhancement is the identity and
// suggestions are the built-in sets.
type StaticProvider struct{}

func NewStaticProvider() *StaticProvider {
	return &StaticProvider{}
}

func (s *StaticProvider) Enhance(ctx context.Context, raw string) string {
	return raw
}

func (s *StaticProvider) SuggestInitial(ctx context.Context) domain.SuggestionSet {
	return domain.InitialFallback()
}

func (s *StaticProvider) SuggestRefinements(ctx context.Context, basePrompt string) domain.SuggestionSet {
	return domain.RefinementFallback()
}

var (
	_ Enhancer  = (*StaticProvider)(nil)
	_ Suggester = (*StaticProvider)(nil)
)
