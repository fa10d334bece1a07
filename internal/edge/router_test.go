package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/archivecast/podcaster/internal/catalog"
	"github.com/archivecast/podcaster/internal/ingestion"
	"github.com/archivecast/podcaster/internal/keypool"
	"github.com/archivecast/podcaster/internal/keyvalidator"
	"github.com/archivecast/podcaster/internal/llm"
	"github.com/archivecast/podcaster/internal/sources"
	"github.com/archivecast/podcaster/internal/workflow"
)

// fakeAdapter is a minimal stand-in Source Adapter for router tests.
type fakeAdapter struct {
	name      string
	available bool
}

func (f *fakeAdapter) Name() string { return f.name }
func (f *fakeAdapter) Verify(ctx context.Context) (sources.VerifyResult, error) {
	return sources.VerifyResult{Available: f.available}, nil
}
func (f *fakeAdapter) Fetch(ctx context.Context, opts sources.FetchOptions) ([]sources.Record, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) (http.Handler, *catalog.Store) {
	t.Helper()
	store, err := catalog.Open(catalog.Config{Path: filepath.Join(t.TempDir(), "archive.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	registry := sources.NewRegistry(&fakeAdapter{name: "archive", available: true})
	ing := ingestion.New(registry, store, 10, nil)
	pool := keypool.New()
	validator := keyvalidator.New(store)
	orch := llm.NewOrchestrator(llm.NewClient(), pool, "")
	wfEngine := workflow.New(store, orch, t.TempDir(), "tts-worker")

	deps := &Deps{
		Store:        store,
		Registry:     registry,
		Ingestion:    ing,
		Pool:         pool,
		Validator:    validator,
		Orchestrator: orch,
		Workflow:     wfEngine,
		NodeEnv:      "test",
		StartedAt:    time.Now(),
	}
	return NewRouter(deps), store
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthReportsDBConnectivity(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doJSON(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.Equal(t, true, body["dbConnected"])
}

func TestStatusReportsSourceAvailability(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doJSON(t, h, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	sources, ok := body["sources"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, true, sources["archive"])
}

func TestSearchSpeechesReturnsPaginatedResults(t *testing.T) {
	h, store := newTestRouter(t)
	_, err := store.UpsertSpeeches(context.Background(), []catalog.Speech{
		{ID: "archive_1", Title: "A Rally in Ohio", Source: "archive"},
		{ID: "archive_2", Title: "A Rally in Texas", Source: "archive"},
	})
	require.NoError(t, err)

	rec := doJSON(t, h, http.MethodGet, "/api/search?keyword=Rally&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	pagination := body["pagination"].(map[string]any)
	require.EqualValues(t, 2, pagination["total"])
	require.Equal(t, true, pagination["hasMore"])
}

func TestCreateWorkflowRejectsEmptySpeechIDs(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doJSON(t, h, http.MethodPost, "/api/workflow", map[string]any{"name": "ep1", "speechIds": []string{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkflowLifecycleThroughUploadScript(t *testing.T) {
	h, store := newTestRouter(t)
	_, err := store.UpsertSpeeches(context.Background(), []catalog.Speech{
		{ID: "archive_1", Title: "A Speech", Source: "archive"},
	})
	require.NoError(t, err)

	createRec := doJSON(t, h, http.MethodPost, "/api/workflow", map[string]any{
		"name": "ep1", "speechIds": []string{"archive_1"},
	})
	require.Equal(t, http.StatusCreated, createRec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(createRec.Body.Bytes(), &created))
	workflowID := created["workflowId"].(string)

	getRec := doJSON(t, h, http.MethodGet, "/api/workflow/"+workflowID, nil)
	require.Equal(t, http.StatusOK, getRec.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &got))
	speeches := got["speeches"].([]any)
	require.Len(t, speeches, 1)

	uploadRec := doJSON(t, h, http.MethodPost, "/api/upload-script", map[string]any{
		"workflowId": workflowID, "script": "Welcome to the show.",
	})
	require.Equal(t, http.StatusOK, uploadRec.Code)
}

func TestGetWorkflowNotFoundReturns404(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doJSON(t, h, http.MethodGet, "/api/workflow/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidateKeysRejectsOverTenKeys(t *testing.T) {
	h, _ := newTestRouter(t)
	keys := make([]string, 11)
	for i := range keys {
		keys[i] = "sk-or-key"
	}
	rec := doJSON(t, h, http.MethodPost, "/api/validate-keys", map[string]any{"apiKeys": keys})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateOpenRouterKeyRejectsBadFormat(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doJSON(t, h, http.MethodPost, "/api/validate-openrouter-key", map[string]any{"apiKey": "not-a-key"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFinalizeDefaultsToLocalBundleWhenOmitted(t *testing.T) {
	h, store := newTestRouter(t)
	_, err := store.UpsertSpeeches(context.Background(), []catalog.Speech{
		{ID: "archive_1", Title: "A Speech", Source: "archive"},
	})
	require.NoError(t, err)

	createRec := doJSON(t, h, http.MethodPost, "/api/workflow", map[string]any{
		"name": "ep1", "speechIds": []string{"archive_1"},
	})
	var created map[string]any
	require.NoError(t, json.Unmarshal(createRec.Body.Bytes(), &created))
	workflowID := created["workflowId"].(string)

	doJSON(t, h, http.MethodPost, "/api/upload-script", map[string]any{
		"workflowId": workflowID, "script": "Welcome to the show.",
	})
	doJSON(t, h, http.MethodPost, "/api/generate-audio", map[string]any{
		"workflowId": workflowID, "voice": "v", "preset": "p",
	})

	// localBundle is deliberately omitted here; it must default to true.
	finalizeRec := doJSON(t, h, http.MethodPost, "/api/finalize", map[string]any{
		"workflowId": workflowID, "title": "Ep1",
	})
	require.Equal(t, http.StatusOK, finalizeRec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(finalizeRec.Body.Bytes(), &body))
	require.NotEmpty(t, body["bundlePath"])
}

func TestKeyPoolStatusReportsSize(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doJSON(t, h, http.MethodGet, "/api/key-pool-status", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.EqualValues(t, 0, body["size"])
}
