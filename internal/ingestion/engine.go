// Package ingestion implements the Ingestion Engine: it fans out to the
// Source Adapter registry, aggregates results with per-source error
// isolation, and upserts into the Catalog Store.
package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/archivecast/podcaster/internal/catalog"
	"github.com/archivecast/podcaster/internal/sources"
)

var tracer = otel.Tracer("speechcastd-ingestion")

// Result summarizes one populate/refresh run.
type Result struct {
	Existing int
	Inserted int
	Total    int
	Errors   []string
}

// VerifyResults maps adapter name to its verify outcome.
type VerifyResults map[string]sources.VerifyResult

// Engine drives ingestion against a fixed adapter registry and store.
type Engine struct {
	registry  *sources.Registry
	store     *catalog.Store
	threshold int
	logger    *slog.Logger
}

// New constructs an Engine. threshold is the speech count above which
// PopulateArchive skips work entirely (default 10 when zero).
func New(registry *sources.Registry, store *catalog.Store, threshold int, logger *slog.Logger) *Engine {
	if threshold <= 0 {
		threshold = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{registry: registry, store: store, threshold: threshold, logger: logger}
}

// PopulateArchive skips work if the store already holds more than the
// configured threshold of speeches; otherwise it verifies sources, fans
// out to fetch, and upserts. One adapter's failure never prevents
// others' results from being saved.
func (e *Engine) PopulateArchive(ctx context.Context) (Result, error) {
	ctx, span := tracer.Start(ctx, "ingestion.populate_archive")
	defer span.End()

	_, existing, err := e.store.SearchSpeeches(ctx, catalog.SearchFilter{Limit: 1})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count existing speeches failed")
		return Result{}, fmt.Errorf("count existing speeches: %w", err)
	}
	if existing > e.threshold {
		span.SetAttributes(attribute.Bool("ingestion.skipped", true))
		return Result{Existing: existing, Total: existing}, nil
	}

	e.VerifyAllSources(ctx)
	records, errs := e.fetchFromAllSources(ctx, sources.FetchOptions{})
	result, err := e.upsert(ctx, existing, records, errs)
	span.SetAttributes(
		attribute.Int("ingestion.inserted", result.Inserted),
		attribute.Int("ingestion.errors", len(result.Errors)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
	}
	return result, err
}

// RefreshSince is the explicit-refresh path: it skips the threshold
// check and passes opts to every adapter. None of the bundled adapters
// filters on opts.Since; each returns its usual result set.
func (e *Engine) RefreshSince(ctx context.Context, opts sources.FetchOptions) (Result, error) {
	ctx, span := tracer.Start(ctx, "ingestion.refresh_since")
	defer span.End()

	_, existing, err := e.store.SearchSpeeches(ctx, catalog.SearchFilter{Limit: 1})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count existing speeches failed")
		return Result{}, fmt.Errorf("count existing speeches: %w", err)
	}
	records, errs := e.fetchFromAllSources(ctx, opts)
	result, err := e.upsert(ctx, existing, records, errs)
	span.SetAttributes(
		attribute.Int("ingestion.inserted", result.Inserted),
		attribute.Int("ingestion.errors", len(result.Errors)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
	}
	return result, err
}

func (e *Engine) upsert(ctx context.Context, existing int, records []sources.Record, errs []string) (Result, error) {
	speeches := make([]catalog.Speech, 0, len(records))
	for _, r := range records {
		speeches = append(speeches, catalog.Speech{
			ID:            r.ID,
			Title:         r.Title,
			Date:          r.Date,
			Source:        r.Source,
			RallyLocation: r.RallyLocation,
			VideoURL:      r.VideoURL,
			AudioURL:      r.AudioURL,
			TranscriptURL: r.TranscriptURL,
			Duration:      r.Duration,
			ThumbnailURL:  r.ThumbnailURL,
			Status:        catalog.SpeechActive,
		})
	}

	inserted, err := e.store.UpsertSpeeches(ctx, speeches)
	if err != nil {
		return Result{}, fmt.Errorf("upsert ingested speeches: %w", err)
	}

	return Result{
		Existing: existing,
		Inserted: inserted,
		Total:    existing + inserted,
		Errors:   errs,
	}, nil
}

// VerifyAllSources checks every adapter's availability concurrently.
func (e *Engine) VerifyAllSources(ctx context.Context) VerifyResults {
	adapters := e.registry.All()
	results := make(VerifyResults, len(adapters))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, a := range adapters {
		a := a
		wg.Add(1)
		go func() {
			defer wg.Done()
			vr, err := a.Verify(ctx)
			if err != nil {
				vr = sources.VerifyResult{Available: false, Error: err.Error()}
			}
			mu.Lock()
			results[a.Name()] = vr
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results
}

// fetchFromAllSources fans out to every adapter in parallel (ordering
// across adapters is not observable) and isolates per-source errors so
// one adapter's failure never drops another's results.
func (e *Engine) fetchFromAllSources(ctx context.Context, opts sources.FetchOptions) ([]sources.Record, []string) {
	adapters := e.registry.All()

	var mu sync.Mutex
	var all []sources.Record
	var errs []string
	var wg sync.WaitGroup

	for _, a := range adapters {
		a := a
		wg.Add(1)
		go func() {
			defer wg.Done()
			recs, err := a.Fetch(ctx, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.logger.Warn("source fetch failed", "source", a.Name(), "error", err)
				errs = append(errs, fmt.Sprintf("%s: %v", a.Name(), err))
				return
			}
			all = append(all, recs...)
		}()
	}
	wg.Wait()
	return all, errs
}
