package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mockup/internal/domain"
	"mockup/internal/storage"
)

type exportResponse struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func (a *App) CurrentImage(w http.ResponseWriter, r *http.Request) {
	img, ok := a.Studio.CurrentImage()
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "no image generated yet")
		return
	}
	a.writeImage(w, img)
}

func (a *App) HistoryImage(w http.ResponseWriter, r *http.Request) {
	img, err := a.Studio.RecordImage(chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.writeImage(w, img)
}

// Export saves the displayed image under the export directory.
func (a *App) Export(w http.ResponseWriter, r *http.Request) {
	if a.Store == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "export storage not configured")
		return
	}
	img, ok := a.Studio.CurrentImage()
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "no image generated yet")
		return
	}
	at := a.now()
	path, err := a.Store.Export(r.Context(), img, at)
	if err != nil {
		a.Logger.Error().Err(err).Msg("export failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to export image")
		return
	}
	a.Logger.Info().Str("path", path).Msg("image exported")
	a.json(w, http.StatusCreated, exportResponse{Name: storage.ExportName(img, at), Path: path})
}

// HistoryArchive streams every timeline entry as a zip download.
func (a *App) HistoryArchive(w http.ResponseWriter, r *http.Request) {
	records := a.Studio.Records()
	if len(records) == 0 {
		a.error(w, http.StatusNotFound, "not_found", "no image generated yet")
		return
	}
	at := a.now()
	data, err := storage.BuildArchive(records, at)
	if err != nil {
		a.Logger.Error().Err(err).Msg("build history archive failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Content-Disposition", `attachment; filename="`+storage.ArchiveName(at)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (a *App) writeImage(w http.ResponseWriter, img domain.ResultImage) {
	mime := img.MIMEType
	if mime == "" {
		mime = domain.DefaultResultMIME
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Content-Disposition", `inline; filename="`+storage.ExportName(img, a.now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
}
