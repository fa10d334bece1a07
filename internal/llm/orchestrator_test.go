package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/archivecast/podcaster/internal/keypool"
)

func newSpeeches(n int) []SpeechInput {
	out := make([]SpeechInput, n)
	for i := range out {
		out[i] = SpeechInput{Title: "Speech", Date: "2024-01-01", Location: "Ohio", Excerpt: "excerpt"}
	}
	return out
}

func chatServer(t *testing.T, reply func(body map[string]any) (int, string)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		status, content := reply(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 200 && status < 300 {
			resp := map[string]any{
				"choices": []map[string]any{
					{"message": map[string]any{"role": "assistant", "content": content}},
				},
			}
			json.NewEncoder(w).Encode(resp)
		}
	}))
}

func newTestOrchestrator(t *testing.T, srv *httptest.Server) *Orchestrator {
	t.Helper()
	client := NewClient()
	client.baseURL = srv.URL
	return NewOrchestrator(client, keypool.New(), "env-key")
}

func TestGenerateScriptUsesSingleStrategyUnderBatchSize(t *testing.T) {
	srv := chatServer(t, func(map[string]any) (int, string) {
		return http.StatusOK, "the final script"
	})
	defer srv.Close()

	o := newTestOrchestrator(t, srv)
	text, meta, err := o.GenerateScript(context.Background(), GenerateRequest{
		Model:    "test-model",
		Speeches: newSpeeches(5),
	})
	require.NoError(t, err)
	require.Equal(t, "single", meta.Strategy)
	require.Equal(t, "the final script", text)
}

func TestGenerateScriptBatchesAboveThresholdAndSurvivesOneFailure(t *testing.T) {
	var calls int64
	srv := chatServer(t, func(body map[string]any) (int, string) {
		n := atomic.AddInt64(&calls, 1)
		if n == 2 {
			return http.StatusInternalServerError, ""
		}
		if n == 4 {
			return http.StatusOK, "final synthesized script"
		}
		return http.StatusOK, "batch summary"
	})
	defer srv.Close()

	o := newTestOrchestrator(t, srv)
	text, meta, err := o.GenerateScript(context.Background(), GenerateRequest{
		Model:     "test-model",
		BatchSize: 10,
		Speeches:  newSpeeches(25),
	})
	require.NoError(t, err)
	require.Equal(t, "batched", meta.Strategy)
	require.True(t, meta.BatchProcessed)
	require.Equal(t, "final synthesized script", text)
	require.EqualValues(t, 4, atomic.LoadInt64(&calls))
}

func TestGenerateScriptSwarmFallsBackToSingleOnAgentFailure(t *testing.T) {
	var calls int64
	srv := chatServer(t, func(map[string]any) (int, string) {
		n := atomic.AddInt64(&calls, 1)
		if n == 2 {
			return http.StatusInternalServerError, ""
		}
		return http.StatusOK, "fallback single script"
	})
	defer srv.Close()

	o := newTestOrchestrator(t, srv)
	text, meta, err := o.GenerateScript(context.Background(), GenerateRequest{
		Model:    "test-model",
		UseSwarm: true,
		Speeches: newSpeeches(9),
	})
	require.NoError(t, err)
	require.Equal(t, "single", meta.Strategy)
	require.Equal(t, "fallback single script", text)
}

func TestGenerateScriptSwarmRequiresAtLeastThreeSpeeches(t *testing.T) {
	srv := chatServer(t, func(map[string]any) (int, string) {
		return http.StatusOK, "single path"
	})
	defer srv.Close()

	o := newTestOrchestrator(t, srv)
	_, meta, err := o.GenerateScript(context.Background(), GenerateRequest{
		Model:    "test-model",
		UseSwarm: true,
		Speeches: newSpeeches(2),
	})
	require.NoError(t, err)
	require.Equal(t, "single", meta.Strategy)
}

func TestCallMarksKeyInvalidOn401AndEvictsFromPool(t *testing.T) {
	srv := chatServer(t, func(map[string]any) (int, string) {
		return http.StatusUnauthorized, ""
	})
	defer srv.Close()

	pool := keypool.New()
	pool.Add("sk-or-bad-key", 1)
	client := NewClient()
	client.baseURL = srv.URL
	o := NewOrchestrator(client, pool, "")

	_, _, err := o.GenerateScript(context.Background(), GenerateRequest{
		Model:    "test-model",
		UsePool:  true,
		Speeches: newSpeeches(1),
	})
	require.Error(t, err)
	require.Equal(t, 0, pool.Len())
}

func TestProxyUsesExplicitKeyAndReturnsRawContent(t *testing.T) {
	srv := chatServer(t, func(map[string]any) (int, string) {
		return http.StatusOK, "raw proxy reply"
	})
	defer srv.Close()

	o := newTestOrchestrator(t, srv)
	text, err := o.Proxy(context.Background(), ProxyRequest{
		Model:       "test-model",
		Messages:    []ChatMessage{{Role: "user", Content: "hi"}},
		ExplicitKey: "sk-or-explicit",
	})
	require.NoError(t, err)
	require.Equal(t, "raw proxy reply", text)
}

func TestCleanScriptTextStripsScratchpadAndFence(t *testing.T) {
	raw := "<scratchpad>plan here</scratchpad>```\nthe actual script\n```"
	got := cleanScriptText(raw)
	require.Equal(t, "the actual script", got)
	require.False(t, strings.Contains(got, "scratchpad"))
}
