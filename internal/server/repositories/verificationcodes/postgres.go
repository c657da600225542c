// Package verificationcodes provides a PostgreSQL-backed store for active
// verification codes, one per account.
package verificationcodes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mbortnikov/marketauth/internal/common"
	"github.com/mbortnikov/marketauth/internal/dbx"
	"github.com/mbortnikov/marketauth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Replace upserts the active code for accountID. The primary key on
// account_id guarantees at most one active code per account.
func (r *PostgresRepository) Replace(ctx context.Context, accountID string, code int, expires time.Time) error {
	query := `
		INSERT INTO verification_codes (account_id, code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE
		SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at, created_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, accountID, code, expires); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Find returns the active code row for accountID.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, accountID string) (*models.VerificationCode, error) {
	query := `
		SELECT account_id, code, expires_at, created_at
		FROM verification_codes
		WHERE account_id = $1
	`
	vc := &models.VerificationCode{}
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&vc.AccountID, &vc.Code, &vc.Expires, &vc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return vc, nil
}

// Delete removes the active code for accountID.
func (r *PostgresRepository) Delete(ctx context.Context, accountID string) error {
	query := `
		DELETE FROM verification_codes
		WHERE account_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, accountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
