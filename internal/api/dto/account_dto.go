package dto

import (
	"time"

	"github.com/spec-kit/civic-report/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountResponse is the public view of an account; the password hash has no field here.
type AccountResponse struct {
	ID         string      `json:"id"`
	FullName   string      `json:"fullName"`
	Email      string      `json:"email"`
	Role       domain.Role `json:"role"`
	IsVerified bool        `json:"isVerified"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// NewAccountResponse maps a domain account.
func NewAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		ID:         a.ID,
		FullName:   a.FullName,
		Email:      a.Email,
		Role:       a.Role,
		IsVerified: a.IsVerified,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

// NewAccountResponses maps a slice of accounts.
func NewAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, NewAccountResponse(&accounts[i]))
	}
	return out
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	User      AccountResponse `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
}
