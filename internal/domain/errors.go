package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyResponse   = errors.New("The model did not return any content. Please try a different prompt.")
	ErrNoImageProduced = errors.New("No image data found in the API response. The model may have had an issue generating the image.")
	ErrBusy            = errors.New("a generation is already in progress")
	ErrNotAnImage      = errors.New("uploaded file is not an image")
	ErrRecordNotFound  = errors.New("generation record not found")
)

// ValidationError is raised before any network call when user input is incomplete.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError builds a ValidationError with the given user-facing message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// GenerationBlockedError reports a prompt rejected before any candidate was produced.
type GenerationBlockedError struct {
	Reason string
}

func (e *GenerationBlockedError) Error() string {
	return fmt.Sprintf("Mockup generation failed because the prompt was blocked. Reason: %s. Please modify your prompt and try again.", e.Reason)
}

// ResponseFlaggedError reports a candidate that finished on a safety or recitation stop.
type ResponseFlaggedError struct {
	Reason string
}

func (e *ResponseFlaggedError) Error() string {
	return fmt.Sprintf("Mockup generation was blocked because the response was flagged. Reason: %s. Please modify your prompt and try again.", e.Reason)
}

// UnexpectedTextError carries the conversational answer returned in place of an image.
type UnexpectedTextError struct {
	Text string
}

func (e *UnexpectedTextError) Error() string {
	return fmt.Sprintf("Model returned text instead of an image: %q. This can happen if the prompt is unclear or blocked.", e.Text)
}

// ServiceCallError wraps transport or otherwise unclassified failures.
type ServiceCallError struct {
	Action string
	Err    error
}

func (e *ServiceCallError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("An unknown error occurred while %s the mockup.", gerund(e.Action))
	}
	return fmt.Sprintf("Failed to %s mockup: %s", e.Action, e.Err.Error())
}

func (e *ServiceCallError) Unwrap() error { return e.Err }

func gerund(action string) string {
	switch action {
	case "generate":
		return "generating"
	case "edit":
		return "editing"
	default:
		return action + "ing"
	}
}

// IsServiceFailure reports whether err belongs to the semantic failure set
// returned by the generation service (as opposed to transport failures).
func IsServiceFailure(err error) bool {
	var (
		blocked *GenerationBlockedError
		flagged *ResponseFlaggedError
		text    *UnexpectedTextError
	)
	switch {
	case errors.As(err, &blocked), errors.As(err, &flagged), errors.As(err, &text):
		return true
	case errors.Is(err, ErrEmptyResponse), errors.Is(err, ErrNoImageProduced):
		return true
	default:
		return false
	}
}
