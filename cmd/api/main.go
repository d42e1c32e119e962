package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"mockup/internal/http/handlers"
	httpapi "mockup/internal/http/httpapi"
	"mockup/internal/infra"
	"mockup/internal/providers"
	"mockup/internal/realtime"
	"mockup/internal/storage"
	"mockup/internal/studio"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	gemini, err := providers.NewGemini(cfg, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure gemini")
	}

	store, err := storage.NewFileStore(cfg.ExportPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare export directory")
	}

	// hub is assigned before the controller can emit anything
	var hub *realtime.Hub
	ctrl, err := studio.NewController(studio.Options{
		Images:           gemini.Images,
		Prompts:          gemini.Prompts,
		Logger:           &logger,
		EnhanceByDefault: cfg.EnhanceByDefault,
		OnChange:         func(st studio.State) { hub.PublishState(st) },
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create studio")
	}
	defer ctrl.Close()

	hub = realtime.NewHub(realtime.Options{
		Logger:   &logger,
		Snapshot: func() any { return ctrl.State() },
	})
	go hub.Run(ctx)

	ctrl.RefreshInitialSuggestions()

	app := handlers.NewApp(ctrl, store, &logger, cfg.MaxUploadBytes)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          logger,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Events:          hub.ServeWS,
	})
	server := infra.NewHTTPServer(cfg, router)

	logger.Info().
		Str("addr", server.Addr()).
		Str("image_model", gemini.Images.Model()).
		Str("export_path", store.BasePath()).
		Msg("API listening")
	if err := server.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("http server failed")
	}
	logger.Info().Msg("server stopped")
}
