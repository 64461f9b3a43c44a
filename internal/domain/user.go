package domain

import (
	"strings"
	"time"
)

// User is a registered identity together with its hashed credential
type User struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	DOB          *time.Time `json:"dob,omitempty"`
	PasswordHash string     `json:"-"` // never serialize the credential
	Interests    []string   `json:"interests"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserFilter selects a single user; empty fields are ignored
type UserFilter struct {
	ID    string
	Email string
	Phone string
}

// IsEmpty reports whether the filter matches nothing in particular
func (f UserFilter) IsEmpty() bool {
	return f.ID == "" && f.Email == "" && f.Phone == ""
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
