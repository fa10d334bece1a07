package keyvalidator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/archivecast/podcaster/internal/catalog"
)

func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	s, err := catalog.Open(catalog.Config{Path: filepath.Join(t.TempDir(), "archive.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestValidateRejectsBadFormatWithoutProbing(t *testing.T) {
	store := newTestStore(t)
	v := New(store)

	verdict, err := v.Validate(context.Background(), "not-an-openrouter-key")
	require.NoError(t, err)
	require.False(t, verdict.Valid)
	require.Equal(t, OutcomeInvalidKey, verdict.ErrorCode)
}

func TestValidateMapsProbeOutcomes(t *testing.T) {
	cases := []struct {
		status   int
		wantCode string
	}{
		{http.StatusUnauthorized, OutcomeInvalidKey},
		{http.StatusForbidden, OutcomeInsufficientPerms},
		{http.StatusTooManyRequests, OutcomeRateLimited},
		{http.StatusInternalServerError, OutcomeValidationFailed},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		}))

		store := newTestStore(t)
		v := New(store)
		v.probeURL = srv.URL

		verdict, err := v.Validate(context.Background(), "sk-or-test-key-123")
		require.NoError(t, err)
		require.False(t, verdict.Valid)
		require.Equal(t, tc.wantCode, verdict.ErrorCode)
		srv.Close()
	}
}

func TestValidateCachesVerdictAcrossCalls(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"id":"a"},{"id":"b"}]}`))
	}))
	defer srv.Close()

	store := newTestStore(t)
	v := New(store)
	v.probeURL = srv.URL

	v1, err := v.Validate(context.Background(), "sk-or-test-key-123")
	require.NoError(t, err)
	require.True(t, v1.Valid)
	require.Equal(t, 2, v1.ModelCount)

	v2, err := v.Validate(context.Background(), "sk-or-test-key-123")
	require.NoError(t, err)
	require.True(t, v2.Valid)
	require.Equal(t, 1, calls, "second call should be served from cache")
}
