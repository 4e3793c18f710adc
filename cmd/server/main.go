package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/pdfquery/internal/api"
	"github.com/dgallion1/pdfquery/internal/config"
	"github.com/dgallion1/pdfquery/internal/document"
	"github.com/dgallion1/pdfquery/internal/engine"
	"github.com/dgallion1/pdfquery/internal/payload"
	"github.com/dgallion1/pdfquery/internal/provider"
	"github.com/dgallion1/pdfquery/internal/render"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize collaborators.
	loader := document.NewLoader(document.PDFTextExtractor{}, render.NewRasterizer())
	client := provider.NewClient(cfg.ProviderBaseURL, cfg.ProviderAPIKey)

	eng := engine.New(engine.Config{
		Model:            cfg.Model,
		MaxTokens:        cfg.MaxTokens,
		Temperature:      cfg.Temperature,
		SystemPrompt:     cfg.SystemPrompt,
		IncludeTextLayer: cfg.IncludeTextLayer,
		ImageDetail:      payload.ImageDetail(cfg.ImageDetail),
		DPI:              cfg.DPI,
		ImageFormat:      document.ImageFormat(cfg.ImageFormat),
		Verbose:          cfg.Verbose,
	}, loader, client, log)

	// Initialize HTTP server.
	srv := api.NewServer(eng, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		httpServer.Close()
	}()

	log.Info("starting pdfquery", "port", cfg.Port, "model", cfg.Model)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
