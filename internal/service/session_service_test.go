package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
	"github.com/anandpskerala/ArticleHubBackend/internal/dto"
	"github.com/anandpskerala/ArticleHubBackend/internal/repository"
	"github.com/anandpskerala/ArticleHubBackend/pkg/logger"
)

// fakeTransport records cookie writes the way a browser jar would
type fakeTransport struct {
	access        string
	refresh       string
	accessMaxAge  time.Duration
	refreshMaxAge time.Duration
	cleared       int
}

func (f *fakeTransport) SetAccessCookie(token string, maxAge time.Duration) {
	f.access, f.accessMaxAge = token, maxAge
}

func (f *fakeTransport) SetRefreshCookie(token string, maxAge time.Duration) {
	f.refresh, f.refreshMaxAge = token, maxAge
}

func (f *fakeTransport) ClearAccessCookie()  { f.access = ""; f.cleared++ }
func (f *fakeTransport) ClearRefreshCookie() { f.refresh = ""; f.cleared++ }

func (f *fakeTransport) ReadRefreshCookie() (string, bool) {
	return f.refresh, f.refresh != ""
}

// failingUserRepository fails every call with err
type failingUserRepository struct {
	err error
}

func (r *failingUserRepository) FindByEmailOrPhone(context.Context, string, string) (*domain.User, error) {
	return nil, r.err
}
func (r *failingUserRepository) FindByID(context.Context, string) (*domain.User, error) {
	return nil, r.err
}
func (r *failingUserRepository) FindOne(context.Context, domain.UserFilter) (*domain.User, error) {
	return nil, r.err
}
func (r *failingUserRepository) Create(context.Context, *domain.User) (*domain.User, error) {
	return nil, r.err
}
func (r *failingUserRepository) Update(context.Context, domain.UserFilter, *domain.User) error {
	return r.err
}

type sessionFixture struct {
	mgr    SessionManager
	users  *repository.MemoryUserRepository
	signer *TokenSigner
	clock  *fakeClock
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	users := repository.NewMemoryUserRepository()
	signer := newTestSigner(t, clock)
	mgr := NewSessionManager(users, NewBcryptHasher(bcrypt.MinCost), signer, logger.NewNop())
	mgr.(*sessionManager).now = clock.Now
	return &sessionFixture{mgr: mgr, users: users, signer: signer, clock: clock}
}

func registerReq(email, phone, password string) *dto.RegisterRequest {
	return &dto.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Phone:     phone,
		DOB:       "1990-12-10",
		Password:  password,
		Interests: []string{"science"},
	}
}

func TestSessionManager_Register(t *testing.T) {
	f := newSessionFixture(t)
	tr := &fakeTransport{}

	res, err := f.mgr.Register(context.Background(), tr, registerReq(" A@X.com ", "1", "secret1"))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOK, res.Status)
	assert.Equal(t, MsgSignupSuccessful, res.Message)
	require.NotNil(t, res.User)
	assert.Equal(t, "a@x.com", res.User.Email)
	assert.Equal(t, []string{"science"}, res.User.Interests)
	require.NotNil(t, res.User.DOB)

	assert.NotEmpty(t, tr.access)
	assert.NotEmpty(t, tr.refresh)
	assert.Equal(t, 15*time.Minute, tr.accessMaxAge)
	assert.Equal(t, 7*24*time.Hour, tr.refreshMaxAge)

	stored, _ := f.users.FindByEmailOrPhone(context.Background(), "a@x.com", "")
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	claims, err := f.signer.VerifyAccess(tr.access)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)
}

func TestSessionManager_RegisterDuplicate(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, err := f.mgr.Register(ctx, &fakeTransport{}, registerReq("a@x.com", "1", "secret1"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		email string
		phone string
	}{
		{"same email", "a@x.com", "2"},
		{"same email different case", "A@x.com", "3"},
		{"same phone", "b@x.com", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &fakeTransport{}
			_, err := f.mgr.Register(ctx, tr, registerReq(tt.email, tt.phone, "secret1"))
			assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
			assert.Equal(t, domain.StatusBadRequest, dto.ResultFromError(err).Status)
			assert.Empty(t, tr.access, "no cookie on failure")
		})
	}
}

func TestSessionManager_RegisterPasswordTooLong(t *testing.T) {
	f := newSessionFixture(t)
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'x'
	}
	_, err := f.mgr.Register(context.Background(), &fakeTransport{}, registerReq("a@x.com", "1", string(long)))
	assert.ErrorIs(t, err, domain.ErrPasswordTooLong)
}

func TestSessionManager_RegisterInvalidDOB(t *testing.T) {
	f := newSessionFixture(t)
	req := registerReq("a@x.com", "1", "secret1")
	req.DOB = "tomorrow"

	_, err := f.mgr.Register(context.Background(), &fakeTransport{}, req)
	assert.Equal(t, domain.KindBadRequest, domain.KindOf(err))
}

func TestSessionManager_Login(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	_, err := f.mgr.Register(ctx, &fakeTransport{}, registerReq("a@x.com", "555", "secret1"))
	require.NoError(t, err)

	t.Run("by email", func(t *testing.T) {
		tr := &fakeTransport{}
		res, err := f.mgr.Login(ctx, tr, &dto.LoginRequest{EmailOrPhone: "A@X.COM", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, MsgLoginSuccessful, res.Message)
		assert.NotEmpty(t, tr.access)
		assert.NotEmpty(t, tr.refresh)
	})

	t.Run("by phone", func(t *testing.T) {
		tr := &fakeTransport{}
		_, err := f.mgr.Login(ctx, tr, &dto.LoginRequest{EmailOrPhone: "555", Password: "secret1"})
		require.NoError(t, err)
	})

	t.Run("wrong password and unknown user are indistinguishable", func(t *testing.T) {
		_, wrongPw := f.mgr.Login(ctx, &fakeTransport{}, &dto.LoginRequest{EmailOrPhone: "a@x.com", Password: "nope"})
		_, unknown := f.mgr.Login(ctx, &fakeTransport{}, &dto.LoginRequest{EmailOrPhone: "z@x.com", Password: "secret1"})

		assert.ErrorIs(t, wrongPw, domain.ErrInvalidCredentials)
		assert.ErrorIs(t, unknown, domain.ErrInvalidCredentials)
		assert.Equal(t, dto.ResultFromError(wrongPw), dto.ResultFromError(unknown))
		assert.Equal(t, domain.StatusForbidden, dto.ResultFromError(unknown).Status)
	})
}

// countingHasher records every hash Verify compares against
type countingHasher struct {
	PasswordHasher
	verified []string
}

func (h *countingHasher) Verify(plain, hashed string) bool {
	h.verified = append(h.verified, hashed)
	return h.PasswordHasher.Verify(plain, hashed)
}

func TestSessionManager_LoginUnknownUserStillHashes(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	hasher := &countingHasher{PasswordHasher: NewBcryptHasher(bcrypt.MinCost)}
	mgr := NewSessionManager(repository.NewMemoryUserRepository(), hasher, newTestSigner(t, clock), logger.NewNop())

	for i := 0; i < 2; i++ {
		_, err := mgr.Login(ctx, &fakeTransport{}, &dto.LoginRequest{EmailOrPhone: "ghost@x.com", Password: "secret1"})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}

	require.Len(t, hasher.verified, 2)
	cost, err := bcrypt.Cost([]byte(hasher.verified[0]))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
	assert.Equal(t, hasher.verified[0], hasher.verified[1])
}

func TestSessionManager_Refresh(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	tr := &fakeTransport{}
	_, err := f.mgr.Register(ctx, tr, registerReq("a@x.com", "1", "secret1"))
	require.NoError(t, err)

	refreshBefore := tr.refresh
	f.clock.Advance(20 * time.Minute)

	_, err = f.signer.VerifyAccess(tr.access)
	require.ErrorIs(t, err, domain.ErrInvalidToken, "access token should have expired")

	res, err := f.mgr.Refresh(ctx, tr)
	require.NoError(t, err)
	assert.Equal(t, MsgTokenRefreshed, res.Message)
	assert.Equal(t, refreshBefore, tr.refresh, "refresh token is not rotated")

	claims, err := f.signer.VerifyAccess(tr.access)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
}

func TestSessionManager_RefreshFailures(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, err := f.mgr.Refresh(ctx, &fakeTransport{})
	assert.ErrorIs(t, err, domain.ErrMissingToken)
	assert.Equal(t, domain.StatusUnauthorized, dto.ResultFromError(err).Status)

	_, err = f.mgr.Refresh(ctx, &fakeTransport{refresh: "garbage"})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	tr := &fakeTransport{}
	_, err = f.mgr.Register(ctx, tr, registerReq("a@x.com", "1", "secret1"))
	require.NoError(t, err)

	// an access token in the refresh slot is rejected
	_, err = f.mgr.Refresh(ctx, &fakeTransport{refresh: tr.access})
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	f.clock.Advance(8 * 24 * time.Hour)
	_, err = f.mgr.Refresh(ctx, tr)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestSessionManager_RefreshForDeletedUser(t *testing.T) {
	f := newSessionFixture(t)
	pair, err := f.signer.IssuePair("ghost", "ghost@x.com")
	require.NoError(t, err)

	_, err = f.mgr.Refresh(context.Background(), &fakeTransport{refresh: pair.Refresh.Token})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSessionManager_Verify(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	reg, err := f.mgr.Register(ctx, &fakeTransport{}, registerReq("a@x.com", "1", "secret1"))
	require.NoError(t, err)

	res, err := f.mgr.Verify(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", res.User.Email)

	_, err = f.mgr.Verify(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidUserID)

	_, err = f.mgr.Verify(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Equal(t, domain.StatusNotFound, dto.ResultFromError(err).Status)
}

func TestSessionManager_Logout(t *testing.T) {
	f := newSessionFixture(t)
	tr := &fakeTransport{access: "a", refresh: "r"}

	res, err := f.mgr.Logout(context.Background(), tr)
	require.NoError(t, err)
	assert.Equal(t, MsgLogoutSuccessful, res.Message)
	assert.Empty(t, tr.access)
	assert.Empty(t, tr.refresh)
	assert.Equal(t, 2, tr.cleared)

	// logging out twice is harmless
	_, err = f.mgr.Logout(context.Background(), tr)
	assert.NoError(t, err)
}

func TestSessionManager_ChangeCredentials(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()
	_, err := f.mgr.Register(ctx, &fakeTransport{}, registerReq("a@x.com", "1", "secret1"))
	require.NoError(t, err)
	_, err = f.mgr.Register(ctx, &fakeTransport{}, registerReq("b@x.com", "2", "secret1"))
	require.NoError(t, err)

	t.Run("profile only", func(t *testing.T) {
		res, err := f.mgr.ChangeCredentials(ctx, &dto.ChangeCredentialsRequest{
			Email: "a@x.com", FirstName: "Grace", LastName: "Hopper", Phone: "1", Interests: []string{"navy"},
		})
		require.NoError(t, err)
		assert.Equal(t, MsgProfileUpdated, res.Message)
		assert.Equal(t, "Grace", res.User.FirstName)
		assert.Equal(t, []string{"navy"}, res.User.Interests)
	})

	t.Run("wrong current password persists nothing", func(t *testing.T) {
		_, err := f.mgr.ChangeCredentials(ctx, &dto.ChangeCredentialsRequest{
			Email: "a@x.com", FirstName: "Mallory", LastName: "X", Phone: "1",
			Password: "wrong", NewPassword: "secret9",
		})
		assert.ErrorIs(t, err, domain.ErrIncorrectPassword)

		stored, _ := f.users.FindOne(ctx, domain.UserFilter{Email: "a@x.com"})
		assert.Equal(t, "Grace", stored.FirstName)
	})

	t.Run("missing new password", func(t *testing.T) {
		_, err := f.mgr.ChangeCredentials(ctx, &dto.ChangeCredentialsRequest{
			Email: "a@x.com", FirstName: "Grace", LastName: "Hopper", Phone: "1", Password: "secret1",
		})
		assert.ErrorIs(t, err, domain.ErrNewPasswordMissing)
	})

	t.Run("phone taken by another user", func(t *testing.T) {
		_, err := f.mgr.ChangeCredentials(ctx, &dto.ChangeCredentialsRequest{
			Email: "a@x.com", FirstName: "Grace", LastName: "Hopper", Phone: "2",
		})
		assert.ErrorIs(t, err, domain.ErrPhoneInUse)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.mgr.ChangeCredentials(ctx, &dto.ChangeCredentialsRequest{
			Email: "nobody@x.com", FirstName: "N", LastName: "N", Phone: "7",
		})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestSessionManager_FullScenario(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	res, err := f.mgr.Register(ctx, &fakeTransport{}, registerReq("a@x.com", "1", "secret1"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, res.Status)

	_, err = f.mgr.Register(ctx, &fakeTransport{}, registerReq("a@x.com", "2", "secret1"))
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	_, err = f.mgr.Login(ctx, &fakeTransport{}, &dto.LoginRequest{EmailOrPhone: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.mgr.Login(ctx, &fakeTransport{}, &dto.LoginRequest{EmailOrPhone: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	changed, err := f.mgr.ChangeCredentials(ctx, &dto.ChangeCredentialsRequest{
		Email: "a@x.com", FirstName: "Ada", LastName: "Lovelace", Phone: "1",
		Password: "secret1", NewPassword: "secret2",
	})
	require.NoError(t, err)
	assert.Equal(t, MsgPasswordUpdated, changed.Message)

	_, err = f.mgr.Login(ctx, &fakeTransport{}, &dto.LoginRequest{EmailOrPhone: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.mgr.Login(ctx, &fakeTransport{}, &dto.LoginRequest{EmailOrPhone: "a@x.com", Password: "secret2"})
	assert.NoError(t, err)
}

func TestSessionManager_StoreFailureIsInternal(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cause := errors.New("connection refused")
	mgr := NewSessionManager(&failingUserRepository{err: cause}, NewBcryptHasher(bcrypt.MinCost), newTestSigner(t, clock), logger.NewNop())

	_, err := mgr.Login(context.Background(), &fakeTransport{}, &dto.LoginRequest{EmailOrPhone: "a@x.com", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
	assert.ErrorIs(t, err, cause)

	res := dto.ResultFromError(err)
	assert.Equal(t, domain.StatusInternalServerError, res.Status)
	assert.NotContains(t, res.Message, "connection refused")
}
