package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordFeedbackGeneratesIDAndTimestamp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.RecordFeedback(ctx, FeedbackRecord{
		OverallRating: 5,
		ScriptRating:  4,
		AudioRating:   5,
		Comments:      "great episode",
		Recommend:     true,
		SessionID:     "session-1",
	})
	require.NoError(t, err)

	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback WHERE session_id = ?`, "session-1")
	require.NoError(t, row.Scan(&count))
	require.Equal(t, 1, count)

	var id, createdAt string
	row = s.db.QueryRowContext(ctx, `SELECT id, created_at FROM feedback WHERE session_id = ?`, "session-1")
	require.NoError(t, row.Scan(&id, &createdAt))
	require.NotEmpty(t, id)
	require.NotEmpty(t, createdAt)
}

func TestRecordFeedbackPreservesExplicitID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.RecordFeedback(ctx, FeedbackRecord{
		ID:            "feedback-fixed",
		OverallRating: 3,
		ScriptRating:  3,
		AudioRating:   3,
		Recommend:     false,
	})
	require.NoError(t, err)

	var recommend int
	row := s.db.QueryRowContext(ctx, `SELECT recommend FROM feedback WHERE id = ?`, "feedback-fixed")
	require.NoError(t, row.Scan(&recommend))
	require.Equal(t, 0, recommend)
}
