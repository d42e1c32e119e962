package genai

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Modalities accepted in GenerationConfig.ResponseModalities.
const (
	ModalityText  = "TEXT"
	ModalityImage = "IMAGE"
)

// Finish reasons that mean the candidate was withheld.
const (
	FinishReasonSafety     = "SAFETY"
	FinishReasonRecitation = "RECITATION"
)

// Schema types for structured output.
const (
	TypeObject = "OBJECT"
	TypeArray  = "ARRAY"
	TypeString = "STRING"
)

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

// Part is a single segment: either text or inline binary data.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

type Blob struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type Schema struct {
	Type             string             `json:"type"`
	Properties       map[string]*Schema `json:"properties,omitempty"`
	PropertyOrdering []string           `json:"propertyOrdering,omitempty"`
	Items            *Schema            `json:"items,omitempty"`
}

type GenerationConfig struct {
	Temperature        *float64 `json:"temperature,omitempty"`
	CandidateCount     int      `json:"candidateCount,omitempty"`
	ResponseMimeType   string   `json:"responseMimeType,omitempty"`
	ResponseSchema     *Schema  `json:"responseSchema,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type GenerateContentRequest struct {
	Contents          []Content         `json:"contents"`
	SystemInstruction *Content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GenerationConfig `json:"generationConfig,omitempty"`
}

type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
}

// TextPart builds a text segment.
func TextPart(text string) Part {
	return Part{Text: text}
}

// InlinePart builds a binary segment, base64-encoding data for the wire.
func InlinePart(data []byte, mimeType string) Part {
	return Part{InlineData: &Blob{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}
}

// UserContent wraps parts in a single user turn.
func UserContent(parts ...Part) Content {
	return Content{Role: "user", Parts: parts}
}

// HasInlineData reports whether the part carries binary output.
func (p Part) HasInlineData() bool {
	return p.InlineData != nil && p.InlineData.Data != ""
}

// Decode returns the raw bytes of an inline segment.
func (b *Blob) Decode() ([]byte, error) {
	if b == nil || b.Data == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(b.Data)
	if err != nil {
		return nil, fmt.Errorf("decode inline data: %w", err)
	}
	return data, nil
}

// BlockReason returns the top-level block indication, if any.
func (r *GenerateContentResponse) BlockReason() string {
	if r == nil || r.PromptFeedback == nil {
		return ""
	}
	return strings.TrimSpace(r.PromptFeedback.BlockReason)
}

// Text concatenates every text segment of the first candidate.
func (r *GenerateContentResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 || r.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}

// Float returns a pointer to v, for optional numeric config fields.
func Float(v float64) *float64 {
	return &v
}
