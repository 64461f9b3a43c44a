package dto

import (
	"regexp"
	"strings"
	"time"

	"github.com/anandpskerala/ArticleHubBackend/internal/domain"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{1,15}$`)
)

// RegisterRequest represents registration request
type RegisterRequest struct {
	FirstName string   `json:"firstName" binding:"required"`
	LastName  string   `json:"lastName" binding:"required"`
	Email     string   `json:"email" binding:"required,email"`
	Phone     string   `json:"phone" binding:"required"`
	DOB       string   `json:"dob"`
	Password  string   `json:"password" binding:"required,min=6,max=72"`
	Interests []string `json:"interests"`
}

// ValidateEmail validates email format more strictly than the binding tag
func (r *RegisterRequest) ValidateEmail() (bool, string) {
	if !emailRegex.MatchString(strings.TrimSpace(r.Email)) {
		return false, "Invalid email format"
	}
	return true, ""
}

// ValidatePhone accepts up to 15 digits with an optional leading +
func (r *RegisterRequest) ValidatePhone() (bool, string) {
	if !phoneRegex.MatchString(strings.TrimSpace(r.Phone)) {
		return false, "Invalid phone number"
	}
	return true, ""
}

// ParseDOB accepts a calendar date or an RFC 3339 timestamp; empty means unset
func (r *RegisterRequest) ParseDOB() (*time.Time, error) {
	return parseDate(r.DOB)
}

// LoginRequest represents login request; the identifier is an email or phone
type LoginRequest struct {
	EmailOrPhone string `json:"emailOrPhone" binding:"required"`
	Password     string `json:"password" binding:"required"`
}

// ChangeCredentialsRequest updates profile fields and optionally the password.
// Supplying a current or new password turns it into a password change.
// Password is an older alias of CurrentPassword.
type ChangeCredentialsRequest struct {
	Email           string   `json:"email"`
	FirstName       string   `json:"firstName" binding:"required"`
	LastName        string   `json:"lastName" binding:"required"`
	Phone           string   `json:"phone" binding:"required"`
	Interests       []string `json:"interests"`
	CurrentPassword string   `json:"currentPassword"`
	Password        string   `json:"password"`
	NewPassword     string   `json:"newPassword" binding:"omitempty,min=6,max=72"`
}

// Current returns the current password, preferring currentPassword over password
func (r *ChangeCredentialsRequest) Current() string {
	if r.CurrentPassword != "" {
		return r.CurrentPassword
	}
	return r.Password
}

// WantsPasswordChange reports whether any password field was supplied
func (r *ChangeCredentialsRequest) WantsPasswordChange() bool {
	return r.Current() != "" || r.NewPassword != ""
}

// UserResponse is the public view of a user; it never carries the hash
type UserResponse struct {
	ID        string     `json:"id"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	DOB       *time.Time `json:"dob,omitempty"`
	Interests []string   `json:"interests"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// NewUserResponse builds the public view of u
func NewUserResponse(u *domain.User) *UserResponse {
	if u == nil {
		return nil
	}
	interests := u.Interests
	if interests == nil {
		interests = []string{}
	}
	return &UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		DOB:       u.DOB,
		Interests: interests,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// SessionResult is the outcome of every session operation
type SessionResult struct {
	Status  domain.Status `json:"status"`
	Message string        `json:"message"`
	User    *UserResponse `json:"user,omitempty"`
}

// ResultFromError converts a failure into the caller-facing result. Internal
// causes are dropped here; they are logged where they happen.
func ResultFromError(err error) *SessionResult {
	return &SessionResult{
		Status:  domain.KindOf(err).Status(),
		Message: domain.MessageOf(err),
	}
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
