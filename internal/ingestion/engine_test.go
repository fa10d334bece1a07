package ingestion

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/archivecast/podcaster/internal/catalog"
	"github.com/archivecast/podcaster/internal/sources"
)

type fakeAdapter struct {
	name     string
	records  []sources.Record
	fetchErr error
}

func (f *fakeAdapter) Name() string { return f.name }
func (f *fakeAdapter) Verify(ctx context.Context) (sources.VerifyResult, error) {
	return sources.VerifyResult{Available: true}, nil
}
func (f *fakeAdapter) Fetch(ctx context.Context, opts sources.FetchOptions) ([]sources.Record, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.records, nil
}

func newTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	s, err := catalog.Open(catalog.Config{Path: filepath.Join(t.TempDir(), "archive.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPopulateArchiveSkipsWhenAboveThreshold(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seed := make([]catalog.Speech, 0, 15)
	for i := 0; i < 15; i++ {
		seed = append(seed, catalog.Speech{ID: fmt.Sprintf("archive_%d", i), Title: "x", Source: "archive"})
	}
	_, err := store.UpsertSpeeches(ctx, seed)
	require.NoError(t, err)

	reg := sources.NewRegistry(&fakeAdapter{name: "archive"})
	eng := New(reg, store, 10, nil)

	result, err := eng.PopulateArchive(ctx)
	require.NoError(t, err)
	require.Equal(t, 15, result.Existing)
	require.Equal(t, 0, result.Inserted)
}

func TestPopulateArchiveIsolatesPerSourceErrors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	reg := sources.NewRegistry(
		&fakeAdapter{name: "archive", records: []sources.Record{{ID: "archive_1", Title: "A", Source: "archive"}}},
		&fakeAdapter{name: "broken", fetchErr: fmt.Errorf("boom")},
	)
	eng := New(reg, store, 10, nil)

	result, err := eng.PopulateArchive(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, result.Inserted)
	require.Len(t, result.Errors, 1)

	_, total, err := store.SearchSpeeches(ctx, catalog.SearchFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestVerifyAllSourcesCollectsEveryAdapter(t *testing.T) {
	store := newTestStore(t)
	reg := sources.NewRegistry(&fakeAdapter{name: "a"}, &fakeAdapter{name: "b"})
	eng := New(reg, store, 10, nil)

	results := eng.VerifyAllSources(context.Background())
	require.Len(t, results, 2)
	require.True(t, results["a"].Available)
	require.True(t, results["b"].Available)
}
