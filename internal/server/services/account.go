// Package services contains server-side business logic. This file implements
// AccountService, which handles signup, login, and dispatching out-of-band
// verification codes to the account's contact channel.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mbortnikov/marketauth/internal/common"
	"github.com/mbortnikov/marketauth/internal/logging"
	"github.com/mbortnikov/marketauth/internal/otp"
	"github.com/mbortnikov/marketauth/internal/passhash"
	"github.com/mbortnikov/marketauth/internal/server/auth"
	"github.com/mbortnikov/marketauth/internal/server/config"
	"github.com/mbortnikov/marketauth/internal/server/metrics"
	"github.com/mbortnikov/marketauth/internal/server/models"
	"github.com/mbortnikov/marketauth/internal/server/notify"
	"github.com/mbortnikov/marketauth/internal/server/repositories/repomanager"
	"github.com/mbortnikov/marketauth/internal/server/validation"
)

// Confirmation acknowledges that a verification code was dispatched. It
// never carries the code value.
type Confirmation struct {
	ExpiresAt time.Time
}

// AccountService provides the three authentication flows:
// - SignUp: create accounts with salted, slow-hashed secrets
// - Login: verify credentials and mint an identity token
// - RequestVerification: dispatch a one-time code to the account's phone
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.Codec
	dispatcher  notify.Dispatcher
	codeWindow  time.Duration
	metrics     metrics.Recorder
	logger      logging.Logger

	// now is a test seam for the clock.
	now func() time.Time
}

// NewAccountService constructs an AccountService using repositories and
// server config.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.Codec,
	dispatcher notify.Dispatcher, cfg *config.Config, rec metrics.Recorder, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		dispatcher:  dispatcher,
		codeWindow:  cfg.VerificationCodeWindow,
		metrics:     rec,
		logger:      logger.With("module", "account_service"),
		now:         time.Now,
	}
}

// SignUp validates the input, hashes the secret under a fresh salt, and
// creates the account with the default BUYER type. The returned account
// never carries the digest or salt. A conflicting identifier yields
// common.ErrorAlreadyExists; the existing account is left untouched.
func (s *AccountService) SignUp(ctx context.Context, in validation.SignupInput) (*models.Account, error) {
	if errs := validation.ValidateSignup(in); len(errs) > 0 {
		s.metrics.RecordSignup(metrics.OutcomeRejected)
		return nil, fmt.Errorf("%w: %s", common.ErrorValidation, validation.Join(errs))
	}

	salt, err := passhash.GenerateSalt()
	if err != nil {
		s.logger.Error(ctx, "entropy source unavailable", "error", err.Error())
		s.metrics.RecordSignup(metrics.OutcomeError)
		return nil, common.ErrorInternal
	}

	secret := []byte(in.Password)
	digest := passhash.Hash(secret, salt)
	common.WipeByteArray(secret)

	account := &models.Account{
		Email:       in.Email,
		Digest:      digest,
		Salt:        salt,
		Phone:       in.Phone,
		AccountType: models.AccountTypeBuyer,
	}

	repo := s.repomanager.Accounts(s.db)
	created, err := repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.metrics.RecordSignup(metrics.OutcomeRejected)
			return nil, common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "account creation failed", "error", err.Error())
		s.metrics.RecordSignup(metrics.OutcomeError)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "account created", "account_id", created.ID)
	s.metrics.RecordSignup(metrics.OutcomeOK)

	// Credential material stays in the directory only.
	created.Digest = nil
	created.Salt = nil
	return created, nil
}

// Login verifies the presented secret against the stored digest and, on
// success, returns an encoded identity token. An unknown identifier and a
// wrong secret both yield common.ErrorInvalidCredentials so callers cannot
// enumerate registered identifiers.
func (s *AccountService) Login(ctx context.Context, in validation.LoginInput) (string, error) {
	if errs := validation.ValidateLogin(in); len(errs) > 0 {
		s.metrics.RecordLogin(metrics.OutcomeRejected)
		return "", fmt.Errorf("%w: %s", common.ErrorValidation, validation.Join(errs))
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// Burn the same hashing cost as the found path so response
			// timing does not reveal whether the identifier exists.
			s.burnDecoyHash(in.Password)
			s.metrics.RecordLogin(metrics.OutcomeRejected)
			return "", common.ErrorInvalidCredentials
		}
		s.logger.Error(ctx, "account lookup failed", "error", err.Error())
		s.metrics.RecordLogin(metrics.OutcomeError)
		return "", common.ErrorInternal
	}

	secret := []byte(in.Password)
	ok, err := passhash.Verify(secret, account.Digest, account.Salt)
	common.WipeByteArray(secret)
	if err != nil {
		s.logger.Error(ctx, "stored credential material is malformed", "account_id", account.ID)
		s.metrics.RecordLogin(metrics.OutcomeError)
		return "", common.ErrInvalidCredentialFormat
	}
	if !ok {
		s.metrics.RecordLogin(metrics.OutcomeRejected)
		return "", common.ErrorInvalidCredentials
	}

	token, err := s.tokens.Issue(account.Email, string(account.AccountType), s.now())
	if err != nil {
		s.logger.Error(ctx, "token issuance failed", "error", err.Error())
		s.metrics.RecordLogin(metrics.OutcomeError)
		return "", common.ErrorInternal
	}

	s.metrics.RecordLogin(metrics.OutcomeOK)
	return token, nil
}

// RequestVerification verifies the presented token, ensures an active code
// exists for the subject, and dispatches it to the stored contact handle.
// An unexpired code from an earlier request is re-sent rather than replaced,
// so a dispatch retry within the window delivers the same code. Dispatcher
// failure yields the retryable common.ErrorDeliveryFailed; the stored code
// remains valid for its full window.
func (s *AccountService) RequestVerification(ctx context.Context, encodedToken string) (*Confirmation, error) {
	identity, err := s.tokens.Verify(encodedToken, s.now())
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByEmail(ctx, identity.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// The subject no longer resolves to an account.
			return nil, common.ErrInvalidToken
		}
		s.logger.Error(ctx, "account lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	active, err := s.activeCode(ctx, account.ID)
	if err != nil {
		return nil, err
	}

	if err := s.dispatcher.Send(ctx, active.Value, account.Phone); err != nil {
		s.logger.Warn(ctx, "verification code delivery failed", "account_id", account.ID, "error", err.Error())
		s.metrics.RecordVerificationDispatch(metrics.OutcomeError)
		return nil, common.ErrorDeliveryFailed
	}

	s.logger.Info(ctx, "verification code dispatched", "account_id", account.ID)
	s.metrics.RecordVerificationDispatch(metrics.OutcomeOK)
	return &Confirmation{ExpiresAt: active.Expires}, nil
}

// activeCode returns the unexpired stored code for the account, generating
// and persisting a replacement when none exists or the stored one expired.
func (s *AccountService) activeCode(ctx context.Context, accountID string) (*otp.Code, error) {
	codes := s.repomanager.VerificationCodes(s.db)
	now := s.now()

	existing, err := codes.Find(ctx, accountID)
	if err == nil && now.Before(existing.Expires) {
		return &otp.Code{Value: existing.Code, Expires: existing.Expires}, nil
	}
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "verification code lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	generated, err := otp.Generate(now, s.codeWindow)
	if err != nil {
		s.logger.Error(ctx, "entropy source unavailable", "error", err.Error())
		return nil, common.ErrorInternal
	}
	if err := codes.Replace(ctx, accountID, generated.Value, generated.Expires); err != nil {
		s.logger.Error(ctx, "verification code store failed", "error", err.Error())
		return nil, common.ErrorInternal
	}
	return generated, nil
}

// burnDecoyHash hashes the presented secret under a throwaway salt.
func (s *AccountService) burnDecoyHash(password string) {
	if salt, err := passhash.GenerateSalt(); err == nil {
		passhash.Hash([]byte(password), salt)
	}
}
