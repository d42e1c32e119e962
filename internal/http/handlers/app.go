package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"mockup/internal/domain"
	"mockup/internal/infra"
	"mockup/internal/storage"
	"mockup/internal/studio"
)

const defaultMaxUploadBytes = 20 << 20

// Studio is the session surface the HTTP layer drives.
type Studio interface {
	State() studio.State
	Upload(data []byte, mediaType, name string) error
	SetEnhance(on bool)
	Generate(ctx context.Context, userPrompt string) error
	Rerun(ctx context.Context, newPrompt string) error
	Refine(ctx context.Context, instruction string) error
	Undo() error
	Redo() error
	RefreshInitialSuggestions()
	CurrentImage() (domain.ResultImage, bool)
	RecordImage(id string) (domain.ResultImage, error)
	Records() []domain.GenerationRecord
}

type App struct {
	Studio         Studio
	Store          *storage.FileStore
	Logger         *infra.Logger
	MaxUploadBytes int64
	Now            func() time.Time
}

func NewApp(s Studio, store *storage.FileStore, logger *infra.Logger, maxUploadBytes int64) *App {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &App{Studio: s, Store: store, Logger: logger, MaxUploadBytes: maxUploadBytes, Now: time.Now}
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, errorResponse{Error: code, Message: msg})
}

// fail maps a domain error onto its HTTP status.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	a.error(w, status, code, err.Error())
}

func classify(err error) (int, string) {
	var (
		validation *domain.ValidationError
		call       *domain.ServiceCallError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, domain.ErrNotAnImage):
		return http.StatusUnsupportedMediaType, "not_an_image"
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound, "not_found"
	case domain.IsServiceFailure(err):
		return http.StatusUnprocessableEntity, "generation_failed"
	case errors.As(err, &call):
		return http.StatusBadGateway, "service_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}
