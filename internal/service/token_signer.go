package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
)

// TokenSignerConfig is injected at construction; nothing is read from globals
type TokenSignerConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	// Now overrides the clock, mainly for tests
	Now func() time.Time
}

// TokenSigner mints and verifies HS256 session tokens
type TokenSigner struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
}

// NewTokenSigner creates a TokenSigner with 15 minute / 7 day defaults
func NewTokenSigner(cfg TokenSignerConfig) (*TokenSigner, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token signer: secret is required")
	}
	if cfg.AccessTTL == 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL == 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenSigner{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		issuer:     cfg.Issuer,
		now:        cfg.Now,
	}, nil
}

// AccessTTL returns the access token lifetime
func (s *TokenSigner) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the refresh token lifetime
func (s *TokenSigner) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueAccess signs {userId, email} valid for the access TTL
func (s *TokenSigner) IssueAccess(userID, email string) (domain.IssuedToken, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := &domain.AccessClaims{
		UserID:           userID,
		Email:            email,
		Type:             domain.TokenTypeAccess,
		RegisteredClaims: s.registered(userID, now, exp),
	}
	return s.sign(claims, exp, s.accessTTL)
}

// IssueRefresh signs {userId} valid for the refresh TTL
func (s *TokenSigner) IssueRefresh(userID string) (domain.IssuedToken, error) {
	now := s.now()
	exp := now.Add(s.refreshTTL)
	claims := &domain.RefreshClaims{
		UserID:           userID,
		Type:             domain.TokenTypeRefresh,
		RegisteredClaims: s.registered(userID, now, exp),
	}
	return s.sign(claims, exp, s.refreshTTL)
}

// IssuePair mints an access and a refresh token for the same subject
func (s *TokenSigner) IssuePair(userID, email string) (*domain.TokenPair, error) {
	access, err := s.IssueAccess(userID, email)
	if err != nil {
		return nil, err
	}
	refresh, err := s.IssueRefresh(userID)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{Access: access, Refresh: refresh}, nil
}

// VerifyAccess returns the claims of a valid access token. Every failure,
// whether malformed, tampered, expired or of the wrong kind, is ErrInvalidToken.
func (s *TokenSigner) VerifyAccess(token string) (*domain.AccessClaims, error) {
	claims := &domain.AccessClaims{}
	if err := s.parse(token, claims); err != nil {
		return nil, domain.ErrInvalidToken
	}
	if claims.Type != domain.TokenTypeAccess || claims.UserID == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// VerifyRefresh is VerifyAccess for refresh tokens
func (s *TokenSigner) VerifyRefresh(token string) (*domain.RefreshClaims, error) {
	claims := &domain.RefreshClaims{}
	if err := s.parse(token, claims); err != nil {
		return nil, domain.ErrInvalidToken
	}
	if claims.Type != domain.TokenTypeRefresh || claims.UserID == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenSigner) registered(subject string, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
}

func (s *TokenSigner) sign(claims jwt.Claims, exp time.Time, ttl time.Duration) (domain.IssuedToken, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return domain.IssuedToken{}, err
	}
	return domain.IssuedToken{Token: signed, ExpiresAt: exp, TTL: ttl}, nil
}

func (s *TokenSigner) parse(token string, claims jwt.Claims) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	return err
}
