package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
	"github.com/anandpskerala/ArticleHubBackend/internal/dto"
	"github.com/anandpskerala/ArticleHubBackend/internal/repository"
	"github.com/anandpskerala/ArticleHubBackend/pkg/logger"
	"github.com/anandpskerala/ArticleHubBackend/pkg/telemetry"
)

// Result messages
const (
	MsgSignupSuccessful  = "Signup successful"
	MsgLoginSuccessful   = "Login successful"
	MsgTokenRefreshed    = "Token refreshed"
	MsgLogoutSuccessful  = "Logout successful"
	MsgPasswordUpdated   = "Password updated"
	MsgProfileUpdated    = "Profile updated"
	MsgIdentityConfirmed = ""
)

// SessionTransport carries tokens to and from the client out of band.
// Cookie flags (HttpOnly, Secure, SameSite, path) are the transport's concern.
type SessionTransport interface {
	SetAccessCookie(token string, maxAge time.Duration)
	SetRefreshCookie(token string, maxAge time.Duration)
	ClearAccessCookie()
	ClearRefreshCookie()
	ReadRefreshCookie() (string, bool)
}

// SessionManager drives the Anonymous -> Authenticated -> Anonymous lifecycle.
// Every method returns either a result or a *domain.AppError; internal causes
// are logged and replaced with a generic message.
type SessionManager interface {
	// Register creates an identity and starts a session for it
	Register(ctx context.Context, tr SessionTransport, req *dto.RegisterRequest) (*dto.SessionResult, error)
	// Login starts a session; unknown identifier and wrong password fail identically
	Login(ctx context.Context, tr SessionTransport, req *dto.LoginRequest) (*dto.SessionResult, error)
	// Refresh re-mints the access token from the refresh cookie without rotating it
	Refresh(ctx context.Context, tr SessionTransport) (*dto.SessionResult, error)
	// Verify resolves the identity behind an already verified access token
	Verify(ctx context.Context, userID string) (*dto.SessionResult, error)
	// Logout clears both cookies; no server state changes
	Logout(ctx context.Context, tr SessionTransport) (*dto.SessionResult, error)
	// ChangeCredentials updates profile fields and optionally the password
	ChangeCredentials(ctx context.Context, req *dto.ChangeCredentialsRequest) (*dto.SessionResult, error)
}

type sessionManager struct {
	users  repository.UserRepository
	hasher PasswordHasher
	signer *TokenSigner
	log    *logger.Logger
	now    func() time.Time

	decoyOnce sync.Once
	decoy     string
}

// NewSessionManager creates a SessionManager
func NewSessionManager(users repository.UserRepository, hasher PasswordHasher, signer *TokenSigner, log *logger.Logger) SessionManager {
	if log == nil {
		log = logger.Get()
	}
	return &sessionManager{
		users:  users,
		hasher: hasher,
		signer: signer,
		log:    log.With(zap.String("component", "session")),
		now:    time.Now,
	}
}

func (s *sessionManager) Register(ctx context.Context, tr SessionTransport, req *dto.RegisterRequest) (*dto.SessionResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session.register")
	defer span.End()

	email := domain.NormalizeEmail(req.Email)
	phone := strings.TrimSpace(req.Phone)
	span.SetAttributes(attribute.String("user.email", email))

	existing, err := s.users.FindByEmailOrPhone(ctx, email, phone)
	if err != nil {
		return nil, s.fail(ctx, span, "register", err)
	}
	if existing != nil {
		return nil, s.fail(ctx, span, "register", domain.ErrUserAlreadyExists)
	}

	dob, err := req.ParseDOB()
	if err != nil {
		return nil, s.fail(ctx, span, "register", domain.NewError(domain.KindBadRequest, "Invalid date of birth"))
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if isPasswordTooLong(err) {
			return nil, s.fail(ctx, span, "register", domain.ErrPasswordTooLong)
		}
		return nil, s.fail(ctx, span, "register", err)
	}

	now := s.now()
	user, err := s.users.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		Phone:        phone,
		DOB:          dob,
		PasswordHash: hash,
		Interests:    req.Interests,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, s.fail(ctx, span, "register", err)
	}

	if err := s.startSession(tr, user); err != nil {
		return nil, s.fail(ctx, span, "register", err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))
	s.log.InfoContext(ctx, "User registered", zap.String("user_id", user.ID))

	return &dto.SessionResult{
		Status:  domain.StatusOK,
		Message: MsgSignupSuccessful,
		User:    dto.NewUserResponse(user),
	}, nil
}

func (s *sessionManager) Login(ctx context.Context, tr SessionTransport, req *dto.LoginRequest) (*dto.SessionResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session.login")
	defer span.End()

	identifier := strings.TrimSpace(req.EmailOrPhone)
	user, err := s.users.FindByEmailOrPhone(ctx, domain.NormalizeEmail(identifier), identifier)
	if err != nil {
		return nil, s.fail(ctx, span, "login", err)
	}

	// one outcome, and the same hashing work, for unknown identifier and wrong password
	if user == nil {
		s.hasher.Verify(req.Password, s.decoyHash())
		return nil, s.fail(ctx, span, "login", domain.ErrInvalidCredentials)
	}
	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, s.fail(ctx, span, "login", domain.ErrInvalidCredentials)
	}

	if err := s.startSession(tr, user); err != nil {
		return nil, s.fail(ctx, span, "login", err)
	}

	span.SetAttributes(attribute.String("user.id", user.ID))

	return &dto.SessionResult{
		Status:  domain.StatusOK,
		Message: MsgLoginSuccessful,
		User:    dto.NewUserResponse(user),
	}, nil
}

func (s *sessionManager) Refresh(ctx context.Context, tr SessionTransport) (*dto.SessionResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session.refresh")
	defer span.End()

	token, ok := tr.ReadRefreshCookie()
	if !ok || token == "" {
		return nil, s.fail(ctx, span, "refresh", domain.ErrMissingToken)
	}

	claims, err := s.signer.VerifyRefresh(token)
	if err != nil {
		return nil, s.fail(ctx, span, "refresh", err)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, s.fail(ctx, span, "refresh", err)
	}
	if user == nil {
		return nil, s.fail(ctx, span, "refresh", domain.ErrUserNotFound)
	}

	access, err := s.signer.IssueAccess(user.ID, user.Email)
	if err != nil {
		return nil, s.fail(ctx, span, "refresh", err)
	}
	tr.SetAccessCookie(access.Token, access.TTL)

	return &dto.SessionResult{
		Status:  domain.StatusOK,
		Message: MsgTokenRefreshed,
		User:    dto.NewUserResponse(user),
	}, nil
}

func (s *sessionManager) Verify(ctx context.Context, userID string) (*dto.SessionResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session.verify")
	defer span.End()

	if strings.TrimSpace(userID) == "" {
		return nil, s.fail(ctx, span, "verify", domain.ErrInvalidUserID)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, s.fail(ctx, span, "verify", err)
	}
	if user == nil {
		return nil, s.fail(ctx, span, "verify", domain.ErrUserNotFound)
	}

	return &dto.SessionResult{
		Status:  domain.StatusOK,
		Message: MsgIdentityConfirmed,
		User:    dto.NewUserResponse(user),
	}, nil
}

func (s *sessionManager) Logout(ctx context.Context, tr SessionTransport) (*dto.SessionResult, error) {
	_, span := telemetry.StartSpan(ctx, "service.session.logout")
	defer span.End()

	// Tokens stay valid until they expire; there is no server-side revocation.
	tr.ClearAccessCookie()
	tr.ClearRefreshCookie()

	return &dto.SessionResult{Status: domain.StatusOK, Message: MsgLogoutSuccessful}, nil
}

func (s *sessionManager) ChangeCredentials(ctx context.Context, req *dto.ChangeCredentialsRequest) (*dto.SessionResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.session.change_credentials")
	defer span.End()

	email := domain.NormalizeEmail(req.Email)
	user, err := s.users.FindOne(ctx, domain.UserFilter{Email: email})
	if err != nil {
		return nil, s.fail(ctx, span, "change_credentials", err)
	}
	if user == nil {
		return nil, s.fail(ctx, span, "change_credentials", domain.ErrUserNotFound)
	}

	user.FirstName = strings.TrimSpace(req.FirstName)
	user.LastName = strings.TrimSpace(req.LastName)
	user.Phone = strings.TrimSpace(req.Phone)
	user.Interests = req.Interests

	passwordChanged := req.WantsPasswordChange()
	if passwordChanged {
		if !s.hasher.Verify(req.Current(), user.PasswordHash) {
			return nil, s.fail(ctx, span, "change_credentials", domain.ErrIncorrectPassword)
		}
		if req.NewPassword == "" {
			return nil, s.fail(ctx, span, "change_credentials", domain.ErrNewPasswordMissing)
		}
		hash, err := s.hasher.Hash(req.NewPassword)
		if err != nil {
			if isPasswordTooLong(err) {
				return nil, s.fail(ctx, span, "change_credentials", domain.ErrPasswordTooLong)
			}
			return nil, s.fail(ctx, span, "change_credentials", err)
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = s.now()

	if err := s.users.Update(ctx, domain.UserFilter{Email: email}, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			err = domain.ErrPhoneInUse
		}
		return nil, s.fail(ctx, span, "change_credentials", err)
	}

	span.SetAttributes(attribute.Bool("password.changed", passwordChanged))

	msg := MsgProfileUpdated
	if passwordChanged {
		msg = MsgPasswordUpdated
	}
	return &dto.SessionResult{
		Status:  domain.StatusOK,
		Message: msg,
		User:    dto.NewUserResponse(user),
	}, nil
}

// decoyHash is a hash at the configured cost that no login can match
func (s *sessionManager) decoyHash() string {
	s.decoyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.log.Warn("failed to build decoy password hash", zap.Error(err))
			return
		}
		s.decoy = hash
	})
	return s.decoy
}

func (s *sessionManager) startSession(tr SessionTransport, user *domain.User) error {
	pair, err := s.signer.IssuePair(user.ID, user.Email)
	if err != nil {
		return err
	}
	tr.SetAccessCookie(pair.Access.Token, pair.Access.TTL)
	tr.SetRefreshCookie(pair.Refresh.Token, pair.Refresh.TTL)
	return nil
}

// fail records err on the span and normalizes it. Expected failures pass
// through unchanged; anything else is logged and wrapped as internal.
func (s *sessionManager) fail(ctx context.Context, span trace.Span, op string, err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) && appErr.Kind != domain.KindInternal {
		span.SetStatus(codes.Error, appErr.Message)
		return appErr
	}

	telemetry.RecordError(span, err)
	s.log.ErrorContext(ctx, "session operation failed", zap.String("op", op), zap.Error(err))
	if appErr != nil {
		return appErr
	}
	return domain.Internal(err)
}
