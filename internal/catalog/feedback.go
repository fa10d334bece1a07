package catalog

import (
	"time"

	"context"

	"github.com/google/uuid"

	"github.com/archivecast/podcaster/internal/apierr"
)

// RecordFeedback writes one append-only end-of-episode rating.
func (s *Store) RecordFeedback(ctx context.Context, f FeedbackRecord) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, overall_rating, script_rating, audio_rating, comments, recommend, session_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.OverallRating, f.ScriptRating, f.AudioRating, f.Comments,
		boolToInt(f.Recommend), f.SessionID, f.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return apierr.Store("record feedback", err)
	}
	return nil
}
