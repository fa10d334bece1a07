// Command speechcastd runs the Request Edge HTTP server: the Catalog
// Store, Source Adapter registry, Ingestion Engine, API-Key Pool, Key
// Validator, LLM Orchestrator, and Workflow Engine all wired behind
// the chi router in internal/edge.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/archivecast/podcaster/internal/catalog"
	"github.com/archivecast/podcaster/internal/config"
	"github.com/archivecast/podcaster/internal/edge"
	"github.com/archivecast/podcaster/internal/ingestion"
	"github.com/archivecast/podcaster/internal/keypool"
	"github.com/archivecast/podcaster/internal/keyvalidator"
	"github.com/archivecast/podcaster/internal/llm"
	"github.com/archivecast/podcaster/internal/observability"
	"github.com/archivecast/podcaster/internal/sources"
	"github.com/archivecast/podcaster/internal/workflow"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	logger := observability.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := observability.InitTracer(ctx, "speechcastd", "dev")
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer tp.Shutdown(context.Background())

	store, err := catalog.Open(catalog.Config{Path: cfg.DatabasePath})
	if err != nil {
		return fmt.Errorf("open catalog store: %w", err)
	}
	defer store.Close()

	registry := sources.NewRegistry(
		sources.NewArchiveSource(),
		sources.NewCSpanSource(cfg.SpeechSubject),
		sources.NewWhiteHouseSource(),
		sources.NewYouTubeSource(cfg.YouTubeAPIKey, nil),
	)

	ing := ingestion.New(registry, store, cfg.IngestThreshold, logger)

	if _, err := store.SeedCuratedModels(ctx, catalog.DefaultCuratedModels()); err != nil {
		logger.Error("curated model seed failed", "error", err)
	}

	pool := keypool.New()
	validator := keyvalidator.New(store)
	orchestrator := llm.NewOrchestrator(llm.NewClient(), pool, cfg.OpenRouterAPIKey)
	wfEngine := workflow.New(store, orchestrator, cfg.OutputRoot, cfg.TTSWorkerPath)

	// Best-effort startup ingestion; failures are logged, not fatal —
	// the server should still come up and serve whatever's cached.
	go func() {
		if _, err := ing.PopulateArchive(context.Background()); err != nil {
			logger.Error("startup archive population failed", "error", err)
		}
	}()

	go runEventRetention(ctx, store, cfg.EventRetention(), logger)

	router := edge.NewRouter(&edge.Deps{
		Store:          store,
		Registry:       registry,
		Ingestion:      ing,
		Pool:           pool,
		Validator:      validator,
		Orchestrator:   orchestrator,
		Workflow:       wfEngine,
		JWTSecret:      cfg.JWTSecret,
		NodeEnv:        cfg.NodeEnv,
		OpenRouterEnv:  cfg.OpenRouterAPIKey,
		OpenRouterTest: cfg.OpenRouterTestKey,
		Logger:         logger,
		StartedAt:      time.Now(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// runEventRetention prunes events older than retention once a day until
// ctx is cancelled. Retention enforcement has no dedicated actor in the
// data model itself, so the daemon drives it on a ticker.
func runEventRetention(ctx context.Context, store *catalog.Store, retention time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PruneEvents(ctx, time.Now().UTC().Add(-retention))
			if err != nil {
				logger.Error("event retention prune failed", "error", err)
				continue
			}
			logger.Info("pruned events", "count", n)
		}
	}
}
