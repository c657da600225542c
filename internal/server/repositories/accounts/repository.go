package accounts

import (
	"context"

	"github.com/mbortnikov/marketauth/internal/server/models"
)

// Repository is the account directory contract consumed by the service
// layer. Accounts are created at signup and never deleted.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
}
