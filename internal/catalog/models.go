package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/archivecast/podcaster/internal/apierr"
)

// CuratedModelsBy returns models in a category, ordered by performance
// score then usage count, both descending.
func (s *Store) CuratedModelsBy(ctx context.Context, category ModelCategory) ([]CuratedModel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, provider, description, category, performance_score,
		       usage_count, avg_response_time, success_rate, last_used,
		       created_at, updated_at
		FROM curated_models
		WHERE category = ?
		ORDER BY performance_score DESC, usage_count DESC
	`, string(category))
	if err != nil {
		return nil, apierr.Store("query curated models", err)
	}
	defer rows.Close()

	var out []CuratedModel
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, apierr.Store("scan curated model", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SeedCuratedModels upserts a built-in default set, used on a fresh
// store so GET /api/models has non-empty output before the first live
// refresh. Returns the number of rows written.
func (s *Store) SeedCuratedModels(ctx context.Context, models []CuratedModel) (int, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	written := 0
	for _, m := range models {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO curated_models (
				id, name, provider, description, category, performance_score,
				usage_count, avg_response_time, success_rate, last_used,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, 0, 0, 0, NULL, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				provider = excluded.provider,
				description = excluded.description,
				category = excluded.category,
				performance_score = excluded.performance_score,
				updated_at = excluded.updated_at
		`, m.ID, m.Name, m.Provider, m.Description, string(m.Category), m.PerformanceScore, now, now)
		if err != nil {
			return written, apierr.Store(fmt.Sprintf("seed model %q", m.ID), err)
		}
		written++
	}
	return written, nil
}

// RecordModelUsage updates rolling usage stats after an LLM call.
func (s *Store) RecordModelUsage(ctx context.Context, id string, elapsed time.Duration, success bool) error {
	now := time.Now().UTC().Format(time.RFC3339)
	successDelta := 0.0
	if success {
		successDelta = 1.0
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE curated_models SET
			usage_count = usage_count + 1,
			avg_response_time = (avg_response_time * usage_count + ?) / (usage_count + 1),
			success_rate = (success_rate * usage_count + ?) / (usage_count + 1),
			last_used = ?,
			updated_at = ?
		WHERE id = ?
	`, elapsed.Seconds()*1000, successDelta, now, now, id)
	if err != nil {
		return apierr.Store("record model usage", err)
	}
	return nil
}

func scanModel(rows *sql.Rows) (CuratedModel, error) {
	var m CuratedModel
	var description sql.NullString
	var lastUsed sql.NullString
	var categoryStr, createdStr, updatedStr string

	err := rows.Scan(
		&m.ID, &m.Name, &m.Provider, &description, &categoryStr,
		&m.PerformanceScore, &m.UsageCount, &m.AvgResponseTime, &m.SuccessRate,
		&lastUsed, &createdStr, &updatedStr,
	)
	if err != nil {
		return CuratedModel{}, err
	}
	if description.Valid {
		m.Description = description.String
	}
	if lastUsed.Valid {
		t := mustParseTime(lastUsed.String)
		m.LastUsed = &t
	}
	m.Category = ModelCategory(categoryStr)
	m.CreatedAt = mustParseTime(createdStr)
	m.UpdatedAt = mustParseTime(updatedStr)
	return m, nil
}
