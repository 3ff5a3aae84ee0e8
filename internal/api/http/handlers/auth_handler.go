package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report/internal/api/dto"
	"github.com/spec-kit/civic-report/internal/auth"
	"github.com/spec-kit/civic-report/internal/service"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

// AuthHandler exposes registration and session endpoints.
type AuthHandler struct {
	accounts *service.AccountService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(accounts *service.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	session, err := h.accounts.Register(c.UserContext(), service.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.OKMessage("Registration successful", sessionResponse(session)))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	session, err := h.accounts.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("Login successful", sessionResponse(session)))
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	if err := h.accounts.Logout(c.UserContext(), principal); err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("Logged out", nil))
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)
	account, err := h.accounts.Me(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(fiber.Map{"user": dto.NewAccountResponse(account)}))
}

func sessionResponse(s *service.Session) dto.AuthResponse {
	return dto.AuthResponse{User: dto.NewAccountResponse(s.Account), Token: s.Token, ExpiresAt: s.ExpiresAt}
}
