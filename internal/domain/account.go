package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role is the privilege level of an account.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// ParseRole accepts the canonical role names only.
func ParseRole(s string) (Role, error) {
	role := Role(strings.TrimSpace(s))
	if !role.Valid() {
		return "", errors.New(`role must be either "User" or "Admin"`)
	}
	return role, nil
}

// Account is a registered citizen or administrator.
type Account struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         Role
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ComparePassword reports whether raw matches the stored credential.
func (a *Account) ComparePassword(raw string) bool {
	if a == nil || a.PasswordHash == "" || raw == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(raw)) == nil
}

// NormalizeEmail lower-cases and trims an address; uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks that email is a bare address without display name.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@"):], ".") {
		return errors.New("email is not a valid address")
	}
	return nil
}

// AccountStats are the aggregate counts shown on the admin dashboard.
type AccountStats struct {
	TotalUsers        int64
	TotalAdmins       int64
	TotalRegularUsers int64
	VerifiedUsers     int64
	RecentUsers       int64
}
