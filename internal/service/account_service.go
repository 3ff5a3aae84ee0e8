package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-report/internal/auth"
	"github.com/spec-kit/civic-report/internal/config"
	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/repository"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

// AccountService coordinates registration, login and session flows.
type AccountService struct {
	accounts   repository.AccountRepository
	revoked    repository.RevocationStore
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AccountDependencies bundles the collaborators of AccountService.
type AccountDependencies struct {
	AccountRepo  repository.AccountRepository
	Revocations  repository.RevocationStore
	TokenManager *auth.TokenManager
}

// NewAccountService builds the service.
func NewAccountService(cfg config.AuthConfig, deps AccountDependencies, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	tokens := deps.TokenManager
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes)
	}
	return &AccountService{
		accounts:   deps.AccountRepo,
		revoked:    deps.Revocations,
		tokens:     tokens,
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// RegisterInput is the self-service sign up payload.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// Session is an account together with a freshly issued bearer token.
type Session struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

// Register creates a User account and signs it in.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	account, err := s.createAccount(ctx, input, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	return s.issue(account)
}

// CreateAdmin creates an Admin account directly; used to bootstrap a deployment.
func (s *AccountService) CreateAdmin(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	return s.createAccount(ctx, input, domain.RoleAdmin)
}

// Login verifies credentials. Unknown email and wrong password are indistinguishable.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.accounts.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !account.ComparePassword(password) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(account)
}

// Logout revokes the token the principal authenticated with.
func (s *AccountService) Logout(ctx context.Context, principal *auth.Principal) error {
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if s.revoked == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, principal.TokenID, principal.ExpiresAt); err != nil {
		return err
	}
	s.logger.Info("session revoked", zap.String("account_id", principal.AccountID))
	return nil
}

// Me returns the caller's current account record.
func (s *AccountService) Me(ctx context.Context, principal *auth.Principal) (*domain.Account, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if principal.Account != nil {
		return principal.Account, nil
	}
	account, err := s.accounts.GetByID(ctx, principal.AccountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("authentication required")
		}
		return nil, err
	}
	return account, nil
}

func (s *AccountService) createAccount(ctx context.Context, input RegisterInput, role domain.Role) (*domain.Account, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := domain.NormalizeEmail(input.Email)

	details := map[string]any{}
	if fullName == "" {
		details["fullName"] = "full name is required"
	}
	if err := domain.ValidateEmail(email); err != nil {
		details["email"] = err.Error()
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		details["password"] = err.Error()
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid account details", details)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	account := &domain.Account{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewDuplicateEmail(email)
		}
		return nil, err
	}
	s.logger.Info("account created", zap.String("account_id", account.ID), zap.String("role", string(role)))
	return account, nil
}

func (s *AccountService) issue(account *domain.Account) (*Session, error) {
	issued, err := s.tokens.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, err
	}
	return &Session{Account: account, Token: issued.Token, ExpiresAt: issued.ExpiresAt}, nil
}
