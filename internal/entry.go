// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/codeboost/internal/api"
	"github.com/starford/codeboost/internal/content"
	"github.com/starford/codeboost/internal/contentservice"
	"github.com/starford/codeboost/internal/index"
	"github.com/starford/codeboost/internal/markdown"
	"github.com/starford/codeboost/internal/mcpserver"
	"github.com/starford/codeboost/internal/newsletter"
	"github.com/starford/codeboost/internal/render"
	"github.com/starford/codeboost/internal/site"
	"github.com/starford/codeboost/internal/sse"
	"github.com/starford/codeboost/internal/storage"
)

// runtime holds the collaborators every command shares.
type runtime struct {
	cfg     *Config
	logger  *slog.Logger
	store   storage.Provider
	db      *index.DB
	loader  *content.Loader
	builder *site.Builder
	svc     *contentservice.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// bootstrap opens storage and the index, then runs the initial sync.
func (a *application) bootstrap() (*runtime, error) {
	cfg := a.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_dir", cfg.Content.Dir),
		slog.String("output_dir", cfg.Build.OutputDir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.EnsureFS(cfg.Content.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	renderer, err := render.New()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init templates: %w", err)
	}

	loader := content.NewLoader(cfg.Content.StripPrefix, markdown.NewRenderer())
	builder := site.New(site.Config{
		Site:         cfg.Site,
		Theme:        cfg.Theme,
		Manifest:     cfg.Manifest,
		OutputDir:    cfg.Build.OutputDir,
		StaticDir:    cfg.Build.StaticDir,
		TopicsFile:   cfg.Content.TopicsFile,
		PageSize:     cfg.Build.PageSize,
		ArchiveBase:  cfg.Build.ArchiveBase,
		VideosBase:   cfg.Build.VideosBase,
		ContentLimit: cfg.Content.Limit,
		FeedSize:     cfg.Build.FeedSize,
		Newsletter:   cfg.Newsletter.Endpoint,
		LiveReload:   cfg.Build.LiveReload,
		Protected:    []string{cfg.SQLite.Path},
	}, db, store, loader, renderer, logger)

	stats, err := builder.Sync()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initial sync: %w", err)
	}
	for _, p := range stats.Failed {
		logger.Warn("content file skipped", slog.String("path", p))
	}

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		db:      db,
		loader:  loader,
		builder: builder,
		svc:     contentservice.NewService(store, db, loader, cfg.Content.Limit),
	}, nil
}

func (rt *runtime) newsletter() *newsletter.Client {
	if rt.cfg.Newsletter.Endpoint == "" {
		return nil
	}
	return newsletter.New(rt.cfg.Newsletter.Endpoint,
		newsletter.WithHTTPClient(&http.Client{Timeout: rt.cfg.Newsletter.Timeout}),
		newsletter.WithLogger(rt.logger),
	)
}

// Build syncs the index and writes the site once.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.bootstrap()
	if err != nil {
		return err
	}
	defer rt.db.Close()

	res, err := rt.builder.Build(ctx, app.build)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}
	if res.DryRun {
		for _, p := range res.Paths {
			rt.logger.Info("would write", slog.String("path", p))
		}
	}
	return nil
}

// ServeMCP exposes the content tools over stdio.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	rt, err := app.bootstrap()
	if err != nil {
		return err
	}
	defer rt.db.Close()

	rt.logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.svc, rt.builder).ServeStdio()
}

// Run builds the site, then serves it with the API while watching the
// content root and rebuilding on change.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.bootstrap()
	if err != nil {
		return err
	}
	defer rt.db.Close()
	cfg, logger := rt.cfg, rt.logger

	buildOpts := site.BuildOptions{Clean: true}
	if _, err := rt.builder.Build(ctx, buildOpts); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	var ready atomic.Bool
	ready.Store(true)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	rebuilder := site.NewRebuilder(rt.builder.Build, buildOpts, cfg.Build.Debounce, logger, func(res *site.BuildResult, err error) {
		info := sse.RebuildInfo{}
		if err != nil {
			info.Error = err.Error()
		} else {
			info.Pages = res.Pages
			info.Files = res.Files
			info.DurationMS = res.Duration.Milliseconds()
		}
		ready.Store(err == nil)
		broker.PublishRebuilt(info)
	})

	apiRouter := api.NewRouter(rt.svc, rt.newsletter(), cfg.Theme, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"build failed"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api; everything else is the built site.
	r.Mount("/api", apiRouter)
	r.Handle("/*", site.Handler(cfg.Build.OutputDir))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the content root; every change is announced and schedules a rebuild.
	g.Go(func() error {
		return index.Watch(gCtx, rt.db, rt.store, rt.loader, logger, func(kind, path string) {
			broker.PublishContentEvent(kind, path)
			rebuilder.Trigger()
		})
	})

	g.Go(func() error {
		return rebuilder.Run(gCtx)
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group once the server has been shut down so the
// watcher and rebuilder stop too.
var errShutdown = errors.New("shutdown")
