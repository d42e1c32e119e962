package studio

import "mockup/internal/domain"

// Status is the controller's position in the generation state machine.
type Status string

const (
	StatusIdle            Status = "idle"
	StatusEnhancingPrompt Status = "enhancing_prompt"
	StatusGenerating      Status = "generating"
	StatusError           Status = "error"
)

// HistoryEntry describes a record without its image bytes.
type HistoryEntry struct {
	ID       string `json:"id"`
	Prompt   string `json:"prompt"`
	MIMEType string `json:"mime_type"`
	Refined  bool   `json:"refined"`
}

// SourceInfo describes the uploaded product image.
type SourceInfo struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
}

// State is an immutable snapshot handed to renderers.
type State struct {
	Status                Status               `json:"status"`
	Busy                  bool                 `json:"busy"`
	Error                 string               `json:"error,omitempty"`
	Source                *SourceInfo          `json:"source,omitempty"`
	Enhance               bool                 `json:"enhance"`
	History               []HistoryEntry       `json:"history"`
	Cursor                int                  `json:"cursor"`
	CurrentID             string               `json:"current_id,omitempty"`
	CurrentPrompt         string               `json:"current_prompt,omitempty"`
	LastUsedPrompt        string               `json:"last_used_prompt,omitempty"`
	CanUndo               bool                 `json:"can_undo"`
	CanRedo               bool                 `json:"can_redo"`
	HasGenerated          bool                 `json:"has_generated"`
	InitialSuggestions    domain.SuggestionSet `json:"initial_suggestions"`
	RefinementSuggestions domain.SuggestionSet `json:"refinement_suggestions"`
	FetchingSuggestions   bool                 `json:"fetching_suggestions"`
}
