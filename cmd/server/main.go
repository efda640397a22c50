package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"billextract/internal/config"
	"billextract/internal/extraction"
	"billextract/internal/fetch"
	"billextract/internal/handler"
	"billextract/internal/logger"
	"billextract/internal/ocr"
	"billextract/internal/ocr/plaintext"
	"billextract/internal/ocr/providers"
	"billextract/internal/port"
	"billextract/internal/router"
	"billextract/internal/service"
	s3storage "billextract/internal/storage/s3"
)

const (
	serviceName = "Bill Extraction API"
	version     = "1.0.0"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	closeProviders := providers.RegisterAll(ctx)
	defer closeProviders()

	// Initialize storage
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" || cfg.S3.Endpoint != "" {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	// Initialize OCR
	ocrExt, err := newOCR(cfg, log)
	if err != nil {
		return err
	}
	extractor := ocr.NewContentRouter(plaintext.NewExtractor(), ocrExt)

	// Initialize services
	engine := extraction.NewEngine(cfg.Extraction.Heuristics(), log)
	statsSvc := service.NewStatsService()
	extractionSvc := service.NewExtractionService(
		fetch.NewFetcher(&cfg.Fetch, storage, log),
		extractor,
		engine,
		statsSvc,
		cfg.Extraction.StrictSchema,
		log,
	)

	// Initialize handlers
	checks := map[string]handler.ReadinessCheck{
		"ocr": func(context.Context) error {
			if ocrExt == nil {
				return ocr.ErrNoProvider
			}
			return nil
		},
	}
	r := router.Setup(
		cfg,
		log,
		handler.NewExtractionHandler(extractionSvc),
		handler.NewHealthHandler(serviceName, version, checks),
		handler.NewInfoHandler(version, ocr.Providers()),
		handler.NewStatsHandler(statsSvc),
	)

	srv := &http.Server{
		Addr:           cfg.Server.Port,
		Handler:        r,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("server exited")
	return nil
}

// newOCR builds the configured provider chain. A missing API key leaves OCR
// disabled; text documents are still served.
func newOCR(cfg *config.Config, log zerolog.Logger) (port.TextExtractor, error) {
	primary := cfg.OCR.PrimaryConfig()
	if primary.Provider == "" || primary.APIKey == "" {
		log.Warn().Str("provider", primary.Provider).Msg("ocr api key not set, image and pdf documents will yield empty results")
		return nil, nil
	}
	ext, err := ocr.NewFromConfig(&cfg.OCR, ocr.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ocr: %w", err)
	}
	log.Info().Str("primary", primary.Provider).Msg("ocr initialized")
	return ext, nil
}
