package repository

import (
	"context"
	"fmt"
	"time"

	"videoquiz/internal/domain"

	"github.com/jmoiron/sqlx"
)

// SQLTokenBlacklist persists revoked token IDs in token_blacklist. It is the
// alternative to the cache-backed blacklist (jwt.blacklist_store: database).
type SQLTokenBlacklist struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLTokenBlacklist(db *sqlx.DB) *SQLTokenBlacklist {
	return &SQLTokenBlacklist{db: db, now: time.Now}
}

// Revoke is idempotent: revoking the same jti twice is not an error.
func (b *SQLTokenBlacklist) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	exec := GetExecutor(ctx, b.db)
	query := exec.Rebind(`INSERT INTO token_blacklist (jti, expires_at, created_at) VALUES (?, ?, ?)`)
	if _, err := exec.ExecContext(ctx, query, jti, expiresAt, b.now()); err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (b *SQLTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	exec := GetExecutor(ctx, b.db)
	var count int
	query := exec.Rebind(`SELECT COUNT(*) FROM token_blacklist WHERE jti = ?`)
	if err := exec.GetContext(ctx, &count, query, jti); err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return count > 0, nil
}

// PurgeExpired removes entries whose tokens would be rejected as expired anyway.
func (b *SQLTokenBlacklist) PurgeExpired(ctx context.Context) (int64, error) {
	exec := GetExecutor(ctx, b.db)
	result, err := exec.ExecContext(ctx, exec.Rebind(`DELETE FROM token_blacklist WHERE expires_at < ?`), b.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge token blacklist: %w", err)
	}
	return result.RowsAffected()
}

var _ domain.TokenBlacklist = (*SQLTokenBlacklist)(nil)
