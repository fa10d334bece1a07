package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.db")
	s, err := Open(Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenIsIdempotentAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	s1, err := Open(Config{Path: path})
	require.NoError(t, err)
	_, err = s1.UpsertSpeeches(context.Background(), []Speech{{ID: "archive_1", Title: "A", Source: "archive"}})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(Config{Path: path})
	require.NoError(t, err)
	defer s2.Close()

	sp, err := s2.GetSpeech(context.Background(), "archive_1")
	require.NoError(t, err)
	require.Equal(t, "A", sp.Title)
}

func TestUpsertSpeechesReplacesOnIDCollision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.UpsertSpeeches(ctx, []Speech{{ID: "archive_1", Title: "First", Source: "archive"}})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = s.UpsertSpeeches(ctx, []Speech{{ID: "archive_1", Title: "Second", Source: "archive"}})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	sp, err := s.GetSpeech(ctx, "archive_1")
	require.NoError(t, err)
	require.Equal(t, "Second", sp.Title)

	_, total, err := s.SearchSpeeches(ctx, SearchFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestSearchSpeechesOrdersByDateDescNullsLastTieBreakByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	d1, d2 := "2024-01-01", "2024-06-01"
	_, err := s.UpsertSpeeches(ctx, []Speech{
		{ID: "b", Title: "no date", Source: "archive"},
		{ID: "a", Title: "early", Source: "archive", Date: &d1},
		{ID: "c", Title: "late", Source: "archive", Date: &d2},
		{ID: "z", Title: "also early, tie", Source: "archive", Date: &d1},
	})
	require.NoError(t, err)

	results, total, err := s.SearchSpeeches(ctx, SearchFilter{})
	require.NoError(t, err)
	require.Equal(t, 4, total)
	require.Len(t, results, 4)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	require.Equal(t, []string{"c", "a", "z", "b"}, ids)
}

func TestSearchSpeechesKeywordMatchesCaseInsensitiveAcrossFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	transcript := "a notable remark about Liberty"
	location := "Concord, NH"
	_, err := s.UpsertSpeeches(ctx, []Speech{
		{ID: "a", Title: "Unrelated", Source: "archive", Transcript: &transcript},
		{ID: "b", Title: "Unrelated too", Source: "archive", RallyLocation: &location},
		{ID: "c", Title: "LIBERTY rally", Source: "archive"},
	})
	require.NoError(t, err)

	results, total, err := s.SearchSpeeches(ctx, SearchFilter{Keyword: "liberty"})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, results, 2)
}

func TestSearchSpeechesLimitClampedTo100(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := make([]Speech, 0, 120)
	for i := 0; i < 120; i++ {
		batch = append(batch, Speech{ID: fmt.Sprintf("archive_%d", i), Title: "T", Source: "archive"})
	}
	_, err := s.UpsertSpeeches(ctx, batch)
	require.NoError(t, err)

	results, total, err := s.SearchSpeeches(ctx, SearchFilter{Limit: 500})
	require.NoError(t, err)
	require.Equal(t, 120, total)
	require.Len(t, results, 100)
}

func TestWorkflowLifecycleTransitionsAndPartialUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.UpsertSpeeches(ctx, []Speech{{ID: "archive_1", Title: "A", Source: "archive"}})
	require.NoError(t, err)

	wf, err := s.CreateWorkflow(ctx, "Episode 1", []string{"archive_1"})
	require.NoError(t, err)
	require.Equal(t, WorkflowDraft, wf.Status)

	script := "hello world"
	generated := WorkflowScriptGenerated
	require.NoError(t, s.UpdateWorkflow(ctx, wf.ID, WorkflowFields{Script: &script, Status: &generated}))

	got, err := s.GetWorkflow(ctx, wf.ID)
	require.NoError(t, err)
	require.Equal(t, WorkflowScriptGenerated, got.Status)
	require.NotNil(t, got.Script)
	require.Equal(t, script, *got.Script)
	require.False(t, got.UpdatedAt.Before(wf.UpdatedAt))
}

func TestCreateWorkflowRejectsEmptySpeechIDs(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateWorkflow(context.Background(), "Empty", nil)
	require.Error(t, err)
}

func TestGetWorkflowNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetWorkflow(context.Background(), "missing")
	require.Error(t, err)
}

func TestKeyValidationCacheHonorsExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, s.CacheKeyValidation(ctx, KeyValidation{
		KeyHash: "hash1", IsValid: true, ModelCount: 5,
		ValidatedAt: now, ExpiresAt: now.Add(time.Hour),
	}))

	v, err := s.LookupKeyValidation(ctx, "hash1")
	require.NoError(t, err)
	require.NotNil(t, v)
	require.True(t, v.IsValid)

	require.NoError(t, s.CacheKeyValidation(ctx, KeyValidation{
		KeyHash: "hash2", IsValid: true, ModelCount: 5,
		ValidatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}))
	v2, err := s.LookupKeyValidation(ctx, "hash2")
	require.NoError(t, err)
	require.Nil(t, v2)
}

func TestCuratedModelsByOrdersByPerformanceThenUsage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.SeedCuratedModels(ctx, []CuratedModel{
		{ID: "m1", Name: "Alpha", Provider: "p", Category: CategoryTopOverall, PerformanceScore: 7},
		{ID: "m2", Name: "Beta", Provider: "p", Category: CategoryTopOverall, PerformanceScore: 9},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	models, err := s.CuratedModelsBy(ctx, CategoryTopOverall)
	require.NoError(t, err)
	require.Len(t, models, 2)
	require.Equal(t, "m2", models[0].ID)
}

func TestEventAppendAndPrune(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, s.AppendEvent(ctx, Event{EventType: "search", Timestamp: old}))
	require.NoError(t, s.AppendEvent(ctx, Event{EventType: "search"}))

	events, err := s.ListEvents(ctx, EventFilter{EventType: "search"})
	require.NoError(t, err)
	require.Len(t, events, 2)

	n, err := s.PruneEvents(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}
