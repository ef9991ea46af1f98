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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/jly61/knowledge-and-blog/internal/api"
	"github.com/jly61/knowledge-and-blog/internal/mcpserver"
	"github.com/jly61/knowledge-and-blog/internal/noteservice"
	"github.com/jly61/knowledge-and-blog/internal/sse"
	"github.com/jly61/knowledge-and-blog/internal/store"
	"github.com/jly61/knowledge-and-blog/internal/vault"
)

const readyTimeout = 2 * time.Second

// setup applies options and installs the logger. The returned func releases the log file.
func setup(opts []Option) (*application, func(), error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	cleanup := func() {}
	if app.logger == nil {
		logger, closer := newLogger(app.config.App, app.logOutput)
		app.logger = logger
		cleanup = func() { _ = closer.Close() }
	}
	slog.SetDefault(app.logger)
	return app, cleanup, nil
}

func (a *application) openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, a.config.Database.DriverName(), a.config.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	return st, nil
}

func (a *application) newService(st *store.Store, opts ...noteservice.Option) *noteservice.Service {
	opts = append([]noteservice.Option{
		noteservice.WithLogger(a.logger),
		noteservice.WithGraphColor(a.config.Graph.DefaultColor),
	}, opts...)
	return noteservice.New(st, opts...)
}

func (a *application) newImporter(svc *noteservice.Service) (*vault.Importer, error) {
	if err := os.MkdirAll(a.config.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	fs, err := vault.NewFS(a.config.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init vault: %w", err)
	}
	return vault.NewImporter(fs, svc, a.config.Vault.Owner, a.logger), nil
}

// NewHTTPHandler mounts health checks and the API under /api.
func NewHTTPHandler(cfg *Config, st *store.Store, svc *noteservice.Service, events http.Handler) http.Handler {
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
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		w.Header().Set("Content-Type", "application/json")
		if err := st.Ping(ctx); err != nil {
			slog.Warn("readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(svc, cfg.Auth.Middleware(), events))
	return r
}

// Run starts the HTTP server, plus the vault watcher when configured.
func Run(ctx context.Context, opts ...Option) error {
	app, cleanup, err := setup(opts)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := app.config
	logger := app.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	st, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	// Live events, scoped to the owner of each change.
	broker := sse.NewBroker(cfg.Graph.EventThrottle)
	svc := app.newService(st, noteservice.WithNotifier(func(e noteservice.Event) {
		broker.PublishChange(e.OwnerID, e.Type, e.NoteID, e.Title)
	}))

	var importer *vault.Importer
	if cfg.Vault.Enabled() {
		if importer, err = app.newImporter(svc); err != nil {
			return err
		}
		if _, err := importer.Sync(ctx, false); err != nil {
			logger.Warn("initial vault sync failed", slog.String("error", err.Error()))
		}
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           NewHTTPHandler(cfg, st, svc, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if importer != nil && cfg.Vault.Watch {
		g.Go(func() error {
			if err := importer.Watch(gCtx); err != nil {
				logger.Error("vault watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

		// Ends open event streams so Shutdown does not wait on them.
		broker.Close()

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

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdio for the configured MCP owner.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, cleanup, err := setup(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	defer cleanup()

	st, err := app.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	app.logger.Info("MCP server starting", slog.String("owner", app.config.MCP.Owner))
	return mcpserver.New(app.newService(st), app.config.MCP.Owner).ServeStdio()
}

// RunImport mirrors the configured vault into notes once.
func RunImport(ctx context.Context, force bool, opts ...Option) (vault.Summary, error) {
	app, cleanup, err := setup(opts)
	if err != nil {
		return vault.Summary{}, err
	}
	defer cleanup()

	if !app.config.Vault.Enabled() {
		return vault.Summary{}, fmt.Errorf("vault.path is not configured")
	}
	st, err := app.openStore(ctx)
	if err != nil {
		return vault.Summary{}, err
	}
	defer st.Close()

	importer, err := app.newImporter(app.newService(st))
	if err != nil {
		return vault.Summary{}, err
	}
	return importer.Sync(ctx, force)
}

// RunExport writes owner's notes as Markdown files into dir. An empty owner
// means the vault owner.
func RunExport(ctx context.Context, dir, owner string, opts ...Option) (int, error) {
	app, cleanup, err := setup(opts)
	if err != nil {
		return 0, err
	}
	defer cleanup()

	if owner == "" {
		owner = app.config.Vault.Owner
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}
	fs, err := vault.NewFS(dir)
	if err != nil {
		return 0, err
	}

	st, err := app.openStore(ctx)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	n, err := vault.Export(ctx, fs, app.newService(st), owner)
	if err != nil {
		return n, err
	}
	app.logger.Info("notes exported", slog.String("dir", fs.Root()), slog.String("owner", owner), slog.Int("notes", n))
	return n, nil
}
