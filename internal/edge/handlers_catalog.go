package edge

import (
	"net/http"
	"strconv"
	"time"

	"github.com/archivecast/podcaster/internal/apierr"
	"github.com/archivecast/podcaster/internal/catalog"
	"github.com/archivecast/podcaster/internal/sources"
)

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	_, total, err := h.deps.Store.SearchSpeeches(r.Context(), catalog.SearchFilter{Limit: 1})
	dbOK := err == nil

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        statusFor(dbOK),
		"dbConnected":   dbOK,
		"speechCount":   total,
		"uptimeSeconds": int(time.Since(h.deps.StartedAt).Seconds()),
	})
}

func statusFor(ok bool) string {
	if ok {
		return "ok"
	}
	return "degraded"
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	available := make(map[string]bool)
	for _, a := range h.deps.Registry.All() {
		result, err := a.Verify(r.Context())
		available[a.Name()] = err == nil && result.Available
	}

	_, total, _ := h.deps.Store.SearchSpeeches(r.Context(), catalog.SearchFilter{Limit: 1})

	writeJSON(w, http.StatusOK, map[string]any{
		"sources":      available,
		"speechCount":  total,
		"aiConfigured": h.deps.OpenRouterEnv != "" || h.deps.Pool.Len() > 0,
	})
}

func (h *handlers) searchSpeeches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	results, total, err := h.deps.Store.SearchSpeeches(r.Context(), catalog.SearchFilter{
		Keyword:   q.Get("keyword"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Limit:     limit,
		Offset:    offset,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	effectiveLimit := limit
	if effectiveLimit <= 0 || effectiveLimit > 100 {
		effectiveLimit = 50
		if limit > 100 {
			effectiveLimit = 100
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"pagination": map[string]any{
			"total":   total,
			"limit":   effectiveLimit,
			"offset":  offset,
			"hasMore": offset+len(results) < total,
		},
	})
}

func (h *handlers) verifySources(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]any)
	for _, a := range h.deps.Registry.All() {
		result, err := a.Verify(r.Context())
		entry := map[string]any{"available": result.Available}
		if result.Status != "" {
			entry["status"] = result.Status
		}
		if err != nil {
			entry["error"] = err.Error()
		} else if result.Error != "" {
			entry["error"] = result.Error
		}
		if result.Method != "" {
			entry["method"] = result.Method
		}
		out[a.Name()] = entry
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handlers) refreshArchive(w http.ResponseWriter, r *http.Request) {
	result, err := h.deps.Ingestion.RefreshSince(r.Context(), sources.FetchOptions{})
	if err != nil {
		h.writeError(w, apierr.UpstreamFailure("refresh archive", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"existing": result.Existing,
		"inserted": result.Inserted,
		"total":    result.Total,
		"errors":   result.Errors,
	})
}

func (h *handlers) listModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.deps.Store.CuratedModelsBy(r.Context(), catalog.CategoryTopOverall)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"models": models,
		"validation": map[string]any{
			"poolSize": h.deps.Pool.Len(),
		},
	})
}

func (h *handlers) refreshModels(w http.ResponseWriter, r *http.Request) {
	// Provider model-ranking ingestion is out of scope for this system's
	// closed adapter family; refresh re-seeds from the curated defaults.
	n, err := h.deps.Store.SeedCuratedModels(r.Context(), catalog.DefaultCuratedModels())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"refreshed": n})
}
