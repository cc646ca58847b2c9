package store

import (
	"context"
	"fmt"
	"time"

	"github.com/corville/notekeep/internal/apperr"
)

// InsertRefreshToken records a newly issued refresh token by its jti.
func (db *DB) InsertRefreshToken(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO refresh_tokens (jti, user_id, expires_at, revoked)
		VALUES (?, ?, ?, 0)
	`, jti, userID, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("store: insert refresh token: %w", err)
	}
	return nil
}

// ConsumeRefreshToken atomically revokes a live refresh token, returning
// apperr.ErrInvalidToken when it is unknown, already rotated out, or
// blacklisted. The single UPDATE guarantees a token is consumed at most
// once even under concurrent refresh attempts.
func (db *DB) ConsumeRefreshToken(ctx context.Context, jti string) error {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked = 1 WHERE jti = ? AND revoked = 0
	`, jti)
	if err != nil {
		return fmt.Errorf("store: consume refresh token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if affected == 0 {
		return apperr.ErrInvalidToken
	}
	return nil
}

// PurgeExpiredTokens removes refresh tokens past their expiry. Revocation
// state for live tokens is untouched.
func (db *DB) PurgeExpiredTokens(ctx context.Context, now time.Time) error {
	_, err := db.conn.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return fmt.Errorf("store: purge tokens: %w", err)
	}
	return nil
}
