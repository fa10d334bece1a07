package edge

import (
	"net/http"
	"strings"

	"github.com/archivecast/podcaster/internal/apierr"
	"github.com/archivecast/podcaster/internal/keyvalidator"
	"github.com/archivecast/podcaster/internal/llm"
)

type validateOpenRouterKeyRequest struct {
	APIKey string `json:"apiKey"`
}

func extractCandidateKey(r *http.Request, bodyKey string) string {
	if bodyKey != "" {
		return bodyKey
	}
	authz := r.Header.Get("Authorization")
	return strings.TrimPrefix(authz, "Bearer ")
}

func (h *handlers) validateOpenRouterKey(w http.ResponseWriter, r *http.Request) {
	var req validateOpenRouterKeyRequest
	_ = decodeJSONBody(r, &req) // header-only callers send no body

	key := extractCandidateKey(r, req.APIKey)
	if key == "" {
		h.writeError(w, apierr.Input("apiKey is required", nil))
		return
	}

	verdict, err := h.deps.Validator.Validate(r.Context(), key)
	if err != nil {
		h.writeError(w, apierr.UpstreamFailure("validate key", err))
		return
	}

	if !verdict.Valid {
		writeJSON(w, statusForVerdict(verdict), errorEnvelope{
			Error:   "invalid_key",
			Message: verdict.ErrorCode,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":      true,
		"modelCount": verdict.ModelCount,
	})
}

// statusForVerdict maps a failed Verdict's error code to the literal
// HTTP status spec.md §6.1 assigns for this endpoint: 401 invalid, 429
// rate-limited, 503 network error. This is narrower than apierr's
// general taxonomy (which has no 503 bucket), so it's applied directly
// rather than going through writeError.
func statusForVerdict(v keyvalidator.Verdict) int {
	switch v.ErrorCode {
	case keyvalidator.OutcomeRateLimited:
		return http.StatusTooManyRequests
	case keyvalidator.OutcomeNetworkError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusUnauthorized
	}
}

const maxBulkValidateKeys = 10

type validateKeysRequest struct {
	APIKeys []string `json:"apiKeys"`
}

func (h *handlers) validateKeys(w http.ResponseWriter, r *http.Request) {
	var req validateKeysRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if len(req.APIKeys) == 0 {
		h.writeError(w, apierr.Input("apiKeys must not be empty", nil))
		return
	}
	if len(req.APIKeys) > maxBulkValidateKeys {
		h.writeError(w, apierr.Input("apiKeys exceeds the maximum of 10 per call", nil))
		return
	}

	results := make([]map[string]any, 0, len(req.APIKeys))
	for _, key := range req.APIKeys {
		verdict, err := h.deps.Validator.Validate(r.Context(), key)
		if err != nil {
			results = append(results, map[string]any{"valid": false, "error": err.Error()})
			continue
		}
		results = append(results, map[string]any{
			"valid":      verdict.Valid,
			"modelCount": verdict.ModelCount,
			"errorCode":  verdict.ErrorCode,
		})
		if verdict.Valid {
			h.deps.Pool.Add(key, priorityFromModelCount(verdict.ModelCount))
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// priorityFromModelCount maps a validated key's available model count to
// a pool priority, clamped to [1, 10].
func priorityFromModelCount(modelCount int) int {
	p := modelCount / 10
	if p < 1 {
		p = 1
	}
	if p > 10 {
		p = 10
	}
	return p
}

func (h *handlers) keyPoolStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"size": h.deps.Pool.Len(),
		"keys": h.deps.Pool.Stats(),
	})
}

type openrouterProxyRequest struct {
	Model       string            `json:"model"`
	Messages    []llm.ChatMessage `json:"messages"`
	Temperature float64           `json:"temperature"`
	MaxTokens   int               `json:"max_tokens"`
	UsePool     bool              `json:"usePool"`
}

// openrouterProxy exposes a raw chat-completion pass-through for
// callers that want provider access without the script-generation
// strategies, still subject to the same key-selection precedence.
func (h *handlers) openrouterProxy(w http.ResponseWriter, r *http.Request) {
	var req openrouterProxyRequest
	if err := decodeJSONBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Model == "" || len(req.Messages) == 0 {
		h.writeError(w, apierr.Input("model and messages are required", nil))
		return
	}

	content, err := h.deps.Orchestrator.Proxy(r.Context(), llm.ProxyRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		UsePool:     req.UsePool,
	})
	if err != nil {
		h.writeError(w, apierr.UpstreamFailure("openrouter proxy call", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"content": content})
}
