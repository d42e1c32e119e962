package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

type optionsRequest struct {
	Enhance *bool `json:"enhance"`
}

func (a *App) State(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, a.Studio.State())
}

// Upload accepts the product image as the multipart field "image".
func (a *App) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "image exceeds upload limit")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "multipart form required")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "image field required")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read image")
		return
	}
	if err := a.Studio.Upload(data, header.Header.Get("Content-Type"), header.Filename); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.Studio.State())
}

func (a *App) SetOptions(w http.ResponseWriter, r *http.Request) {
	var req optionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.Enhance == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "enhance required")
		return
	}
	a.Studio.SetEnhance(*req.Enhance)
	a.json(w, http.StatusOK, a.Studio.State())
}

func (a *App) RefreshSuggestions(w http.ResponseWriter, r *http.Request) {
	a.Studio.RefreshInitialSuggestions()
	a.json(w, http.StatusAccepted, a.Studio.State())
}
