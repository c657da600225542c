// Package repomanager wires concrete repository implementations to database
// handles, letting services obtain repositories bound either to the pool or
// to a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/mbortnikov/marketauth/internal/dbx"
	"github.com/mbortnikov/marketauth/internal/server/repositories/accounts"
	"github.com/mbortnikov/marketauth/internal/server/repositories/verificationcodes"
)

// RepositoryManager constructs repositories over the given DBTX and applies
// schema migrations.
type RepositoryManager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	VerificationCodes(db dbx.DBTX) verificationcodes.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
