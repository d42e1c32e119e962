package handlers

import (
	"context"
	"encoding/json"
	"net/http"
)

type promptRequest struct {
	Prompt string `json:"prompt"`
}

type refineRequest struct {
	Instruction string `json:"instruction"`
}

// Generate blocks until the generation resolves. Clients wanting progress
// subscribe to /v1/events.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	a.run(w, r, func(ctx context.Context) error { return a.Studio.Generate(ctx, req.Prompt) })
}

func (a *App) Rerun(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	a.run(w, r, func(ctx context.Context) error { return a.Studio.Rerun(ctx, req.Prompt) })
}

func (a *App) Refine(w http.ResponseWriter, r *http.Request) {
	var req refineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	a.run(w, r, func(ctx context.Context) error { return a.Studio.Refine(ctx, req.Instruction) })
}

func (a *App) Undo(w http.ResponseWriter, r *http.Request) {
	a.run(w, r, func(context.Context) error { return a.Studio.Undo() })
}

func (a *App) Redo(w http.ResponseWriter, r *http.Request) {
	a.run(w, r, func(context.Context) error { return a.Studio.Redo() })
}

func (a *App) run(w http.ResponseWriter, r *http.Request, op func(ctx context.Context) error) {
	if err := op(r.Context()); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.Studio.State())
}
