package domain

import "errors"

// ErrorKind classifies session failures
type ErrorKind string

const (
	KindConflict           ErrorKind = "conflict"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindMissingToken       ErrorKind = "missing_token"
	KindInvalidToken       ErrorKind = "invalid_or_expired_token"
	KindNotFound           ErrorKind = "not_found"
	KindBadRequest         ErrorKind = "bad_request"
	KindForbidden          ErrorKind = "forbidden"
	KindInternal           ErrorKind = "internal"
)

// Status is the outcome reported to the caller of a session or article operation
type Status string

const (
	StatusOK                  Status = "OK"
	StatusCreated             Status = "CREATED"
	StatusBadRequest          Status = "BAD_REQUEST"
	StatusUnauthorized        Status = "UNAUTHORIZED"
	StatusForbidden           Status = "FORBIDDEN"
	StatusNotFound            Status = "NOT_FOUND"
	StatusInternalServerError Status = "INTERNAL_SERVER_ERROR"
)

// Status maps a kind onto the caller-visible status. A duplicate identity is
// reported as a bad request, matching what clients already handle.
func (k ErrorKind) Status() Status {
	switch k {
	case KindConflict, KindBadRequest:
		return StatusBadRequest
	case KindInvalidCredentials, KindForbidden:
		return StatusForbidden
	case KindMissingToken, KindInvalidToken:
		return StatusUnauthorized
	case KindNotFound:
		return StatusNotFound
	default:
		return StatusInternalServerError
	}
}

// AppError carries a kind, a caller-safe message and an optional cause that
// is only ever logged.
type AppError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches another *AppError of the same kind and message
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// NewError builds an AppError
func NewError(kind ErrorKind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Internal wraps an unexpected failure; the cause never reaches the caller
func Internal(cause error) *AppError {
	return &AppError{Kind: KindInternal, Message: "Internal server error", Cause: cause}
}

// KindOf extracts the kind of err, defaulting to internal
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf extracts the caller-safe message of err
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}

// Session errors
var (
	ErrUserAlreadyExists  = NewError(KindConflict, "User already exists")
	ErrInvalidCredentials = NewError(KindInvalidCredentials, "Invalid credentials")
	ErrMissingToken       = NewError(KindMissingToken, "Refresh token not found")
	ErrInvalidToken       = NewError(KindInvalidToken, "Invalid or expired token")
	ErrUserNotFound       = NewError(KindNotFound, "User not found")
	ErrInvalidUserID      = NewError(KindBadRequest, "Invalid user Id")
	ErrIncorrectPassword  = NewError(KindBadRequest, "Current password is incorrect")
	ErrNotAuthenticated   = NewError(KindMissingToken, "Not authenticated")
	ErrPhoneInUse         = NewError(KindConflict, "Phone number already in use")
	ErrPasswordTooLong    = NewError(KindBadRequest, "Password must not exceed 72 bytes")
	ErrNewPasswordMissing = NewError(KindBadRequest, "New password is required")
	ErrEmailMismatch      = NewError(KindForbidden, "You can only update your own profile")
)

// Article errors
var (
	ErrArticleNotFound = NewError(KindNotFound, "This article doesn't exist")
	ErrInvalidTags     = NewError(KindBadRequest, "Tags must be a JSON array of strings")
	ErrInvalidArticle  = NewError(KindBadRequest, "Title and content are required")
	ErrImageTooLarge   = NewError(KindBadRequest, "Image must not exceed 5MB")
	ErrUnsupportedFile = NewError(KindBadRequest, "Only image uploads are allowed")
	ErrEmptyImage      = NewError(KindBadRequest, "Image is empty")
)
