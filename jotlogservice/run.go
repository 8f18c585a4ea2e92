// Package jotlogservice wires the configuration, stores, services and
// HTTP transport into a running jotlog server.
package jotlogservice

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jotlog/jotlog/internal/api"
	"github.com/jotlog/jotlog/internal/config"
	"github.com/jotlog/jotlog/internal/enrich"
	"github.com/jotlog/jotlog/internal/logger"
	"github.com/jotlog/jotlog/internal/services"
	"github.com/jotlog/jotlog/internal/store/jsonfile"
	"github.com/jotlog/jotlog/internal/store/markdown"
	"github.com/jotlog/jotlog/internal/store/sqlitelog"
	"github.com/jotlog/jotlog/internal/watch"
)

// Run starts the jotlog HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("jotlog")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	log.Info().
		Int("http_port", cfg.HTTPPort).
		Str("data_dir", cfg.DataDir).
		Str("default_project", cfg.DefaultProject).
		Msg("jotlog service starting")

	// Cancellable root context bound to SIGINT/SIGTERM
	ctx, stop := newServerContext()
	defer stop()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Error().Err(err).Msg("Data directory unavailable")
		return err
	}

	deps, manager, logs, err := buildDeps(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := logs.Close(); err != nil {
			log.Warn().Err(err).Msg("activity log close failed")
		}
	}()

	// Cache invalidation for external edits to the entry files
	watcher := watch.New(manager, log)
	go func() {
		if err := watcher.Run(ctx); err != nil {
			log.Warn().Err(err).Msg("filesystem watcher stopped")
		}
	}()

	router := api.NewRouter(deps)
	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

// buildDeps constructs the store and service graph.
func buildDeps(cfg *config.Config, log zerolog.Logger) (api.Deps, *markdown.Manager, *sqlitelog.Store, error) {
	manager := markdown.NewManager(cfg.DataDir, log)

	topicsStore := jsonfile.NewNamesStore(filepath.Join(cfg.DataDir, "topics.json"))
	peopleStore := jsonfile.NewNamesStore(filepath.Join(cfg.DataDir, "people.json"))
	columnsStore := jsonfile.NewColumnsStore(filepath.Join(cfg.DataDir, "columns.json"))
	settingsStore := jsonfile.NewSettingsStore(filepath.Join(cfg.DataDir, "settings.json"))

	logs, err := sqlitelog.Open(filepath.Join(cfg.DataDir, "activity.db"), cfg.LogRetention())
	if err != nil {
		log.Error().Err(err).Msg("Activity log store unavailable")
		return api.Deps{}, nil, nil, err
	}

	entrySvc := services.NewEntryService(manager, columnsStore, logs, log)
	topicSvc := services.NewTaxonomyService(topicsStore)
	peopleSvc := services.NewTaxonomyService(peopleStore)
	columnSvc := services.NewColumnService(columnsStore, entrySvc)
	settingsSvc := services.NewSettingsService(settingsStore)
	logSvc := services.NewLogService(logs)

	aiClient := enrich.NewAnthropicClient(cfg.AIBaseURL, cfg.AIModel, cfg.AIAPIKey, settingsStore)
	updater := enrich.NewUpdater(manager, log)
	names := nameSource{topics: topicsStore, people: peopleStore}
	runner := enrich.NewRunner(updater, aiClient, names, logs, cfg.EnrichTimeout(), log)

	return api.Deps{
		Entries:        entrySvc,
		Topics:         topicSvc,
		People:         peopleSvc,
		Columns:        columnSvc,
		Settings:       settingsSvc,
		Logs:           logSvc,
		Enrich:         runner,
		DataDir:        cfg.DataDir,
		DefaultProject: cfg.DefaultProject,
		Log:            log,
	}, manager, logs, nil
}

// nameSource feeds the classifier the known suggestion lists.
type nameSource struct {
	topics *jsonfile.NamesStore
	people *jsonfile.NamesStore
}

func (n nameSource) Topics(ctx context.Context) ([]string, error) { return n.topics.List(ctx) }
func (n nameSource) People(ctx context.Context) ([]string, error) { return n.people.List(ctx) }

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
