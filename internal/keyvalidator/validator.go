// Package keyvalidator implements the Key Validator: format check,
// cache lookup by secure hash, and a live "list models" probe against
// OpenRouter.
package keyvalidator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/archivecast/podcaster/internal/catalog"
)

// Outcome codes mirror the provider response mapping.
const (
	OutcomeInvalidKey        = "INVALID_KEY"
	OutcomeInsufficientPerms = "INSUFFICIENT_PERMISSIONS"
	OutcomeRateLimited       = "RATE_LIMITED"
	OutcomeNetworkError      = "NETWORK_ERROR"
	OutcomeValidationFailed  = "VALIDATION_FAILED"
)

// keyPrefix is the expected format prefix for OpenRouter API keys.
const keyPrefix = "sk-or-"

const probeTimeout = 10 * time.Second

const cacheTTL = time.Hour

// Verdict is the outcome of validating a candidate key.
type Verdict struct {
	Valid      bool
	ModelCount int
	ErrorCode  string // empty when Valid
}

// Validator validates candidate keys against the cache, then a live
// probe, per spec.
type Validator struct {
	store      *catalog.Store
	probeURL   string
	httpClient *http.Client
}

func New(store *catalog.Store) *Validator {
	return &Validator{
		store:      store,
		probeURL:   "https://openrouter.ai/api/v1/models",
		httpClient: &http.Client{Timeout: probeTimeout},
	}
}

// HashKey returns the secure hash used as the cache key; the raw key is
// never persisted.
func HashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Validate runs the full pipeline: format check, cache lookup, live
// probe, cache write.
func (v *Validator) Validate(ctx context.Context, raw string) (Verdict, error) {
	if !strings.HasPrefix(raw, keyPrefix) {
		return Verdict{Valid: false, ErrorCode: OutcomeInvalidKey}, nil
	}

	hash := HashKey(raw)

	if cached, err := v.store.LookupKeyValidation(ctx, hash); err == nil && cached != nil {
		errCode := ""
		if cached.ErrorCode != nil {
			errCode = *cached.ErrorCode
		}
		return Verdict{Valid: cached.IsValid, ModelCount: cached.ModelCount, ErrorCode: errCode}, nil
	}

	verdict, err := v.probe(ctx, raw)
	if err != nil {
		return Verdict{}, fmt.Errorf("probe key: %w", err)
	}

	now := time.Now().UTC()
	var errCodePtr *string
	if verdict.ErrorCode != "" {
		ec := verdict.ErrorCode
		errCodePtr = &ec
	}
	if err := v.store.CacheKeyValidation(ctx, catalog.KeyValidation{
		KeyHash:     hash,
		IsValid:     verdict.Valid,
		ModelCount:  verdict.ModelCount,
		ErrorCode:   errCodePtr,
		ValidatedAt: now,
		ExpiresAt:   now.Add(cacheTTL),
	}); err != nil {
		return Verdict{}, fmt.Errorf("cache validation verdict: %w", err)
	}

	return verdict, nil
}

type modelsListResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// probe issues the minimal "list models" call and maps the outcome.
// There is no SDK for this provider in the example corpus or the wider
// ecosystem at the versions it pins, so this is a direct net/http call.
func (v *Validator) probe(ctx context.Context, raw string) (Verdict, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.probeURL, nil)
	if err != nil {
		return Verdict{}, fmt.Errorf("build probe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+raw)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		// Covers connection refused, DNS failure, and timeout alike.
		return Verdict{Valid: false, ErrorCode: OutcomeNetworkError}, nil
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var parsed modelsListResponse
		_ = decodeJSON(resp, &parsed)
		return Verdict{Valid: true, ModelCount: len(parsed.Data)}, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return Verdict{Valid: false, ErrorCode: OutcomeInvalidKey}, nil
	case resp.StatusCode == http.StatusForbidden:
		return Verdict{Valid: false, ErrorCode: OutcomeInsufficientPerms}, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return Verdict{Valid: false, ErrorCode: OutcomeRateLimited}, nil
	default:
		return Verdict{Valid: false, ErrorCode: OutcomeValidationFailed}, nil
	}
}
