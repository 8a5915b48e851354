package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrSessionInvalid is returned when a refresh token hash matches no
// live session: unknown, expired or revoked.
var ErrSessionInvalid = errors.New("session invalid or expired")

// SessionRepo tracks refresh-token sessions for the management
// surface.  One row per issued refresh token; only the SHA-256 hash of
// the token is ever stored.  Revocation sets a tombstone (revoked_at)
// instead of deleting, so a login history survives logout.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo constructs a SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// Start records a new session for the user.  expiresAt comes from the
// refresh token itself so DB and token always agree on the lifetime.
func (r *SessionRepo) Start(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)`,
		userID, tokenHash, expiresAt)
	return err
}

// Resolve maps a refresh token hash to its user.  Expiry and
// revocation are filtered in SQL, so a dead session and an unknown
// hash are indistinguishable to the caller; both come back as
// ErrSessionInvalid.
func (r *SessionRepo) Resolve(ctx context.Context, tokenHash string) (uint64, error) {
	var userID uint64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM refresh_tokens
		 WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()
		 LIMIT 1`, tokenHash).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrSessionInvalid
		}
		return 0, err
	}
	return userID, nil
}

// Revoke ends the session behind one token hash.  Revoking an already
// dead session is a no-op, which keeps logout idempotent.
func (r *SessionRepo) Revoke(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP()
		 WHERE token_hash = ? AND revoked_at IS NULL`, tokenHash)
	return err
}

// RevokeAllForUser ends every live session of a user, the
// "log me out everywhere" path behind a bearer-only logout.
func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP()
		 WHERE user_id = ? AND revoked_at IS NULL`, userID)
	return err
}
