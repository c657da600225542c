package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbortnikov/marketauth/internal/common"
	"github.com/mbortnikov/marketauth/internal/dbx"
	"github.com/mbortnikov/marketauth/internal/logging"
	"github.com/mbortnikov/marketauth/internal/otp"
	"github.com/mbortnikov/marketauth/internal/server/auth"
	"github.com/mbortnikov/marketauth/internal/server/config"
	"github.com/mbortnikov/marketauth/internal/server/metrics"
	"github.com/mbortnikov/marketauth/internal/server/models"
	"github.com/mbortnikov/marketauth/internal/server/repositories/accounts"
	"github.com/mbortnikov/marketauth/internal/server/repositories/verificationcodes"
	"github.com/mbortnikov/marketauth/internal/server/validation"
)

type fakeAccountRepo struct {
	byEmail map[string]*models.Account
	nextID  int

	createErr error
	getErr    error
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byEmail: map[string]*models.Account{}}
}

func (r *fakeAccountRepo) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.byEmail[account.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	r.nextID++
	stored := *account
	stored.ID = fmt.Sprintf("acc-%d", r.nextID)
	stored.CreatedAt = time.Now()
	r.byEmail[stored.Email] = &stored

	result := stored
	return &result, nil
}

func (r *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	stored, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	result := *stored
	return &result, nil
}

type fakeCodeRepo struct {
	byAccount map[string]*models.VerificationCode

	replaceErr error
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{byAccount: map[string]*models.VerificationCode{}}
}

func (r *fakeCodeRepo) Replace(ctx context.Context, accountID string, code int, expires time.Time) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.byAccount[accountID] = &models.VerificationCode{
		AccountID: accountID,
		Code:      code,
		Expires:   expires,
	}
	return nil
}

func (r *fakeCodeRepo) Find(ctx context.Context, accountID string) (*models.VerificationCode, error) {
	stored, ok := r.byAccount[accountID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	result := *stored
	return &result, nil
}

func (r *fakeCodeRepo) Delete(ctx context.Context, accountID string) error {
	delete(r.byAccount, accountID)
	return nil
}

type fakeRepoManager struct {
	accounts *fakeAccountRepo
	codes    *fakeCodeRepo
}

func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository { return m.accounts }
func (m *fakeRepoManager) VerificationCodes(dbx.DBTX) verificationcodes.Repository {
	return m.codes
}
func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

type dispatched struct {
	code   int
	handle string
}

type fakeDispatcher struct {
	sent []dispatched
	err  error
}

func (d *fakeDispatcher) Send(ctx context.Context, code int, contactHandle string) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, dispatched{code: code, handle: contactHandle})
	return nil
}

type serviceFixture struct {
	svc        *AccountService
	accounts   *fakeAccountRepo
	codes      *fakeCodeRepo
	dispatcher *fakeDispatcher
	clock      *time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	manager := &fakeRepoManager{accounts: newFakeAccountRepo(), codes: newFakeCodeRepo()}
	dispatcher := &fakeDispatcher{}

	cfg := &config.Config{}
	cfg.LoadDefaults()

	svc := NewAccountService(nil, manager, auth.NewCodec([]byte("test-secret"), 24*time.Hour),
		dispatcher, cfg, metrics.Nop{}, logging.NewSlogLogger(nil))

	f := &serviceFixture{
		svc:        svc,
		accounts:   manager.accounts,
		codes:      manager.codes,
		dispatcher: dispatcher,
		clock:      &now,
	}
	svc.now = func() time.Time { return *f.clock }
	return f
}

func (f *serviceFixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func validSignup() validation.SignupInput {
	return validation.SignupInput{
		Email:    "buyer@example.com",
		Password: "s3cret-pass",
		Phone:    "+15551234",
	}
}

func TestAccountServiceSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("creates buyer account and scrubs credential material", func(t *testing.T) {
		f := newServiceFixture(t)

		account, err := f.svc.SignUp(ctx, validSignup())
		require.NoError(t, err)
		assert.NotEmpty(t, account.ID)
		assert.Equal(t, "buyer@example.com", account.Email)
		assert.Equal(t, models.AccountTypeBuyer, account.AccountType)
		assert.Nil(t, account.Digest)
		assert.Nil(t, account.Salt)

		stored := f.accounts.byEmail["buyer@example.com"]
		require.NotNil(t, stored)
		assert.Len(t, stored.Salt, 16)
		assert.Len(t, stored.Digest, 32)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		f := newServiceFixture(t)

		in := validSignup()
		in.Email = "not-an-email"
		_, err := f.svc.SignUp(ctx, in)
		assert.ErrorIs(t, err, common.ErrorValidation)
		assert.Empty(t, f.accounts.byEmail)
	})

	t.Run("duplicate identifier leaves existing account untouched", func(t *testing.T) {
		f := newServiceFixture(t)

		first, err := f.svc.SignUp(ctx, validSignup())
		require.NoError(t, err)

		in := validSignup()
		in.Password = "different-pass"
		_, err = f.svc.SignUp(ctx, in)
		assert.ErrorIs(t, err, common.ErrorAlreadyExists)

		stored := f.accounts.byEmail["buyer@example.com"]
		assert.Equal(t, first.ID, stored.ID)
	})

	t.Run("repository failure maps to internal", func(t *testing.T) {
		f := newServiceFixture(t)
		f.accounts.createErr = errors.New("connection reset")

		_, err := f.svc.SignUp(ctx, validSignup())
		assert.ErrorIs(t, err, common.ErrorInternal)
	})
}

func TestAccountServiceLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials yield verifiable token", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.SignUp(ctx, validSignup())
		require.NoError(t, err)

		token, err := f.svc.Login(ctx, validation.LoginInput{
			Email:    "buyer@example.com",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)

		identity, err := f.svc.tokens.Verify(token, *f.clock)
		require.NoError(t, err)
		assert.Equal(t, "buyer@example.com", identity.Subject)
		assert.Equal(t, string(models.AccountTypeBuyer), identity.AccountType)
	})

	t.Run("unknown identifier and wrong secret are indistinguishable", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.SignUp(ctx, validSignup())
		require.NoError(t, err)

		_, errUnknown := f.svc.Login(ctx, validation.LoginInput{
			Email:    "nobody@example.com",
			Password: "s3cret-pass",
		})
		_, errWrong := f.svc.Login(ctx, validation.LoginInput{
			Email:    "buyer@example.com",
			Password: "wrong-pass",
		})

		assert.ErrorIs(t, errUnknown, common.ErrorInvalidCredentials)
		assert.ErrorIs(t, errWrong, common.ErrorInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.svc.Login(ctx, validation.LoginInput{Email: "buyer@example.com"})
		assert.ErrorIs(t, err, common.ErrorValidation)
	})

	t.Run("malformed stored material surfaces as format error", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.SignUp(ctx, validSignup())
		require.NoError(t, err)
		f.accounts.byEmail["buyer@example.com"].Salt = []byte{0x01}

		_, err = f.svc.Login(ctx, validation.LoginInput{
			Email:    "buyer@example.com",
			Password: "s3cret-pass",
		})
		assert.ErrorIs(t, err, common.ErrInvalidCredentialFormat)
	})
}

func TestAccountServiceRequestVerification(t *testing.T) {
	ctx := context.Background()

	login := func(t *testing.T, f *serviceFixture) string {
		t.Helper()
		_, err := f.svc.SignUp(ctx, validSignup())
		require.NoError(t, err)
		token, err := f.svc.Login(ctx, validation.LoginInput{
			Email:    "buyer@example.com",
			Password: "s3cret-pass",
		})
		require.NoError(t, err)
		return token
	}

	t.Run("dispatches code to stored contact handle", func(t *testing.T) {
		f := newServiceFixture(t)
		token := login(t, f)

		conf, err := f.svc.RequestVerification(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, f.clock.Add(otp.DefaultWindow), conf.ExpiresAt)

		require.Len(t, f.dispatcher.sent, 1)
		sent := f.dispatcher.sent[0]
		assert.Equal(t, "+15551234", sent.handle)
		assert.GreaterOrEqual(t, sent.code, 10000)
		assert.Less(t, sent.code, 910000)
	})

	t.Run("repeat request within window re-sends the same code", func(t *testing.T) {
		f := newServiceFixture(t)
		token := login(t, f)

		_, err := f.svc.RequestVerification(ctx, token)
		require.NoError(t, err)
		f.advance(10 * time.Minute)
		_, err = f.svc.RequestVerification(ctx, token)
		require.NoError(t, err)

		require.Len(t, f.dispatcher.sent, 2)
		assert.Equal(t, f.dispatcher.sent[0].code, f.dispatcher.sent[1].code)
	})

	t.Run("expired code is replaced on the next request", func(t *testing.T) {
		f := newServiceFixture(t)
		token := login(t, f)

		first, err := f.svc.RequestVerification(ctx, token)
		require.NoError(t, err)
		f.advance(otp.DefaultWindow)

		second, err := f.svc.RequestVerification(ctx, token)
		require.NoError(t, err)
		assert.True(t, second.ExpiresAt.After(first.ExpiresAt))
	})

	t.Run("delivery failure is retryable with the original code", func(t *testing.T) {
		f := newServiceFixture(t)
		token := login(t, f)

		f.dispatcher.err = errors.New("provider unreachable")
		_, err := f.svc.RequestVerification(ctx, token)
		assert.ErrorIs(t, err, common.ErrorDeliveryFailed)

		stored := f.codes.byAccount["acc-1"]
		require.NotNil(t, stored)

		f.dispatcher.err = nil
		conf, err := f.svc.RequestVerification(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, stored.Expires, conf.ExpiresAt)
		require.Len(t, f.dispatcher.sent, 1)
		assert.Equal(t, stored.Code, f.dispatcher.sent[0].code)
	})

	t.Run("rejects tampered token", func(t *testing.T) {
		f := newServiceFixture(t)
		_ = login(t, f)

		_, err := f.svc.RequestVerification(ctx, "not-a-token")
		assert.ErrorIs(t, err, common.ErrInvalidToken)
		assert.Empty(t, f.dispatcher.sent)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		f := newServiceFixture(t)
		token := login(t, f)
		f.advance(25 * time.Hour)

		_, err := f.svc.RequestVerification(ctx, token)
		assert.ErrorIs(t, err, common.ErrTokenExpired)
	})

	t.Run("token for a removed account is rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		token := login(t, f)
		delete(f.accounts.byEmail, "buyer@example.com")

		_, err := f.svc.RequestVerification(ctx, token)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})
}

// TestAccountServiceFullFlow exercises the three operations end to end:
// signup, login, then verification dispatch.
func TestAccountServiceFullFlow(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	account, err := f.svc.SignUp(ctx, validSignup())
	require.NoError(t, err)
	require.NotEmpty(t, account.ID)

	token, err := f.svc.Login(ctx, validation.LoginInput{
		Email:    "buyer@example.com",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)

	conf, err := f.svc.RequestVerification(ctx, token)
	require.NoError(t, err)
	assert.True(t, conf.ExpiresAt.After(*f.clock))

	require.Len(t, f.dispatcher.sent, 1)
	assert.Equal(t, "+15551234", f.dispatcher.sent[0].handle)
}
