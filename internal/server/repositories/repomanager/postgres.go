package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mbortnikov/marketauth/internal/dbx"
	"github.com/mbortnikov/marketauth/internal/server/migrations"
	"github.com/mbortnikov/marketauth/internal/server/repositories/accounts"
	"github.com/mbortnikov/marketauth/internal/server/repositories/verificationcodes"
)

// PostgresRepositoryManager builds PostgreSQL repositories. It is stateless:
// the database handle is supplied per call, so the same manager serves both
// pool-backed and transactional repositories.
type PostgresRepositoryManager struct{}

func NewPostgresRepositoryManager() *PostgresRepositoryManager {
	return &PostgresRepositoryManager{}
}

func (m *PostgresRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) VerificationCodes(db dbx.DBTX) verificationcodes.Repository {
	return verificationcodes.NewPostgresRepository(db)
}

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
