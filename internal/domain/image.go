package domain

import "strings"

// DefaultResultMIME is assumed for results the service returns without a media type.
const DefaultResultMIME = "image/png"

// RefinementPrefix tags history entries produced by a refinement.
const RefinementPrefix = "Refinement: "

// SourceImage is the uploaded product image. It is replaced wholesale on re-upload.
type SourceImage struct {
	Data     []byte
	MIMEType string
	Name     string
}

// IsZero reports whether no image has been uploaded.
func (s SourceImage) IsZero() bool {
	return len(s.Data) == 0
}

// ResultImage is a generated artifact returned by the service.
type ResultImage struct {
	Data     []byte
	MIMEType string
}

// AsSource converts a prior result into an input for a follow-up edit.
func (r ResultImage) AsSource(name string) SourceImage {
	mime := strings.TrimSpace(r.MIMEType)
	if mime == "" {
		mime = DefaultResultMIME
	}
	return SourceImage{Data: r.Data, MIMEType: mime, Name: name}
}

// Extension returns a file extension for the result media type.
func (r ResultImage) Extension() string {
	switch strings.ToLower(strings.TrimSpace(r.MIMEType)) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	default:
		return "png"
	}
}

// GenerationRecord is one immutable entry in the session timeline.
type GenerationRecord struct {
	ID     string
	Image  ResultImage
	Prompt string
}

// IsRefinement reports whether the record was produced by a refinement.
func (r GenerationRecord) IsRefinement() bool {
	return strings.HasPrefix(r.Prompt, RefinementPrefix)
}

// RefinementPrompt builds the display prompt recorded for a refinement.
func RefinementPrompt(instruction string) string {
	return RefinementPrefix + `"` + instruction + `"`
}
