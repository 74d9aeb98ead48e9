// Package app wires storage, services and the HTTP router into a server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MikhailRaia/utility-suite/internal/config"
	"github.com/MikhailRaia/utility-suite/internal/handler"
	"github.com/MikhailRaia/utility-suite/internal/render"
	"github.com/MikhailRaia/utility-suite/internal/service"
	"github.com/MikhailRaia/utility-suite/internal/shortener"
	"github.com/MikhailRaia/utility-suite/internal/storage"
	"github.com/MikhailRaia/utility-suite/internal/storage/file"
	"github.com/MikhailRaia/utility-suite/internal/storage/memory"
	"github.com/MikhailRaia/utility-suite/internal/storage/postgres"
	"github.com/MikhailRaia/utility-suite/internal/storage/sqlite"
	"github.com/MikhailRaia/utility-suite/internal/worker"
)

const (
	storageInitTimeout = 10 * time.Second
	shutdownTimeout    = 10 * time.Second
)

type App struct {
	config  *config.Config
	store   storage.Storage
	clicks  *worker.ClickWorkerPool
	handler http.Handler
}

func NewApp(cfg *config.Config) (*App, error) {
	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	external := shortener.NewClient(cfg.ShortenerEndpoint, cfg.ShortenerTimeout)
	renderer := render.NewRenderer()

	opts := []service.ShortlinkOption{service.WithConcurrency(cfg.BatchConcurrency)}

	var clicks *worker.ClickWorkerPool
	if cfg.ClickWorkers > 0 {
		poolCfg := worker.DefaultConfig()
		poolCfg.WorkerCount = cfg.ClickWorkers
		clicks = worker.NewClickWorkerPool(store, poolCfg)
		clicks.Start()
		opts = append(opts, service.WithClickRecorder(clicks))
	}

	shortlinkService := service.NewShortlinkService(store, external, opts...)
	qrService := service.NewQRService(renderer, external, cfg.BatchConcurrency)
	imageService := service.NewImageService(renderer, cfg.BatchConcurrency)
	statusService := service.NewStatusService(store)

	httpHandler := handler.NewHandler(
		shortlinkService,
		qrService,
		imageService,
		statusService,
		store,
		handler.WithCORSOrigins(cfg.CORSOrigins),
	)

	return &App{
		config:  cfg,
		store:   store,
		clicks:  clicks,
		handler: httpHandler.RegisterRoutes(),
	}, nil
}

func newStorage(cfg *config.Config) (storage.Storage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), storageInitTimeout)
	defer cancel()

	switch {
	case cfg.DatabaseDSN != "":
		store, err := postgres.NewStorage(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize PostgreSQL storage: %w", err)
		}
		log.Info().Msg("Using PostgreSQL storage")
		return store, nil
	case cfg.SQLitePath != "":
		store, err := sqlite.NewStorage(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite storage: %w", err)
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("Using SQLite storage")
		return store, nil
	case cfg.FileStoragePath != "":
		store, err := file.NewStorage(cfg.FileStoragePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		log.Info().Str("path", cfg.FileStoragePath).Msg("Using file storage")
		return store, nil
	default:
		log.Info().Msg("Using in-memory storage")
		return memory.NewStorage(), nil
	}
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves HTTP until ctx is done, then shuts the server down and releases
// the click pool and the store.
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              a.config.ServerAddress,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", a.config.ServerAddress).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			runErr = fmt.Errorf("error shutting down server: %w", err)
		}
	case err := <-serverErr:
		runErr = err
	}

	if err := a.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Close drains pending click increments and closes the store.
func (a *App) Close() error {
	if a.clicks != nil {
		if err := a.clicks.Shutdown(shutdownTimeout); err != nil {
			log.Error().Err(err).Msg("Click worker pool did not drain")
		}
	}
	return a.store.Close()
}
