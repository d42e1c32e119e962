package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"mockup/internal/http/handlers"
	"mockup/internal/middleware"
)

type Options struct {
	Logger          zerolog.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
	// Events serves the websocket stream; the route is omitted when nil.
	Events http.HandlerFunc
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/state", app.State)
		r.Post("/source", app.Upload)
		r.Put("/options", app.SetOptions)

		// Service backed calls share a per-client budget.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
			r.Post("/generate", app.Generate)
			r.Post("/refine", app.Refine)
			r.Post("/rerun", app.Rerun)
			r.Post("/suggestions/refresh", app.RefreshSuggestions)
		})

		r.Post("/undo", app.Undo)
		r.Post("/redo", app.Redo)
		r.Get("/image/current", app.CurrentImage)
		r.Get("/history/archive", app.HistoryArchive)
		r.Get("/history/{id}/image", app.HistoryImage)
		r.Post("/export", app.Export)

		if opts.Events != nil {
			r.Get("/events", opts.Events)
		}
	})

	return r
}
