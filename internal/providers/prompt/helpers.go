package prompt

import (
	"encoding/json"
	"errors"
	"strings"

	"golang.org/x/text/cases"

	"mockup/internal/domain"
	"mockup/internal/providers/genai"
)

func parseModelPayload[T any](raw string) (T, error) {
	var zero T
	cleaned := extractJSONFragment(raw)
	if cleaned == "" {
		return zero, errors.New("empty payload")
	}
	var decoded T
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return zero, err
	}
	return decoded, nil
}

func extractJSONFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	text = trimCodeFence(text)
	start := strings.IndexAny(text, "{[")
	end := strings.LastIndexAny(text, "]}")
	if start >= 0 && end >= start {
		text = text[start : end+1]
	}
	return strings.TrimSpace(text)
}

func trimCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```JSON")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// categorySchema asks for one string array per category, in order.
func categorySchema(categories []domain.Category) *genai.Schema {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(categories)),
	}
	for _, c := range categories {
		schema.Properties[string(c)] = &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		}
		schema.PropertyOrdering = append(schema.PropertyOrdering, string(c))
	}
	return schema
}

// normalizeSuggestions maps a decoded payload onto the known categories.
// Keys are matched case-insensitively; unknown keys are dropped; a known
// category with no usable phrases is taken from fallback. The second return
// value reports whether any category came from the payload.
func normalizeSuggestions(raw map[string][]string, categories []domain.Category, fallback domain.SuggestionSet) (domain.SuggestionSet, bool) {
	fold := cases.Fold()
	byKey := make(map[string][]string, len(raw))
	for k, v := range raw {
		byKey[fold.String(strings.TrimSpace(k))] = v
	}

	var out domain.SuggestionSet
	matched := false
	for _, c := range categories {
		phrases := normalizePhrases(byKey[fold.String(string(c))])
		if len(phrases) == 0 {
			phrases = append([]string(nil), fallback.Phrases(c)...)
		} else {
			matched = true
		}
		out.Groups = append(out.Groups, domain.SuggestionGroup{Category: c, Phrases: phrases})
	}
	return out, matched
}

func normalizePhrases(phrases []string) []string {
	seen := make(map[string]struct{})
	var result []string
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, p)
	}
	return result
}

// AppendSuggestion adds a clicked suggestion phrase to the text being composed.
func AppendSuggestion(current, phrase string) string {
	current = strings.TrimSpace(current)
	if current == "" {
		return phrase
	}
	return current + ", " + phrase
}
