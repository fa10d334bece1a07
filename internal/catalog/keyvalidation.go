package catalog

import (
	"context"
	"database/sql"
	"time"

	"github.com/archivecast/podcaster/internal/apierr"
)

// CacheKeyValidation persists a verdict (valid or invalid) with a
// 1-hour expiry, keyed by the key's secure hash.
func (s *Store) CacheKeyValidation(ctx context.Context, v KeyValidation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO key_validations (key_hash, is_valid, model_count, error_code, validated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key_hash) DO UPDATE SET
			is_valid = excluded.is_valid,
			model_count = excluded.model_count,
			error_code = excluded.error_code,
			validated_at = excluded.validated_at,
			expires_at = excluded.expires_at
	`, v.KeyHash, boolToInt(v.IsValid), v.ModelCount, v.ErrorCode,
		v.ValidatedAt.UTC().Format(time.RFC3339), v.ExpiresAt.UTC().Format(time.RFC3339))
	if err != nil {
		return apierr.Store("cache key validation", err)
	}
	return nil
}

// LookupKeyValidation returns the cached verdict only while it has not
// yet expired; an expired or absent entry returns (nil, nil) — this is
// a cache miss, not an error.
func (s *Store) LookupKeyValidation(ctx context.Context, keyHash string) (*KeyValidation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT key_hash, is_valid, model_count, error_code, validated_at, expires_at
		FROM key_validations WHERE key_hash = ?
	`, keyHash)

	var v KeyValidation
	var isValidInt int
	var errorCode sql.NullString
	var validatedStr, expiresStr string

	err := row.Scan(&v.KeyHash, &isValidInt, &v.ModelCount, &errorCode, &validatedStr, &expiresStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apierr.Store("lookup key validation", err)
	}

	v.IsValid = isValidInt != 0
	if errorCode.Valid {
		v.ErrorCode = &errorCode.String
	}
	v.ValidatedAt = mustParseTime(validatedStr)
	v.ExpiresAt = mustParseTime(expiresStr)

	if !v.ExpiresAt.After(time.Now().UTC()) {
		return nil, nil
	}
	return &v, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
