package verificationcodes

import (
	"context"
	"time"

	"github.com/mbortnikov/marketauth/internal/server/models"
)

// Repository stores the active verification code per account so that
// dispatch retries within the validity window re-send the same code instead
// of generating a new one.
type Repository interface {
	// Replace stores code as the active code for accountID, displacing any
	// prior code for the same account.
	Replace(ctx context.Context, accountID string, code int, expires time.Time) error

	// Find returns the active code for accountID, or common.ErrorNotFound.
	Find(ctx context.Context, accountID string) (*models.VerificationCode, error)

	// Delete removes the active code for accountID, if any.
	Delete(ctx context.Context, accountID string) error
}
