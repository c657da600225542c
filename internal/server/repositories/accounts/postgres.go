// Package accounts provides a PostgreSQL-backed account directory.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

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

// Create inserts a new account. Email uniqueness is enforced by the
// database; a conflict yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id, email, secret_digest, secret_salt, phone, account_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	account.ID = uuid.NewString()

	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Email, account.Digest, account.Salt,
		account.Phone, string(account.AccountType)).Scan(&account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

// GetByEmail returns the account with the given email, or
// common.ErrorNotFound if no such account exists.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT id, email, secret_digest, secret_salt, phone, account_type, created_at
		FROM accounts
		WHERE email = $1
	`

	account := &models.Account{}
	var accountType string
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID, &account.Email, &account.Digest, &account.Salt,
		&account.Phone, &accountType, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	account.AccountType = models.AccountType(accountType)

	return account, nil
}
