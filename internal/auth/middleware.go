package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/repository"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	AccountID string
	Role      domain.Role
	Account   *domain.Account
	TokenID   string
	ExpiresAt time.Time
}

// Gate validates bearer tokens and loads principals.
type Gate struct {
	tokens   *TokenManager
	accounts repository.AccountRepository
	revoked  repository.RevocationStore
	logger   *zap.Logger
}

// NewGate constructs the authentication middleware.
func NewGate(tokens *TokenManager, accounts repository.AccountRepository, revoked repository.RevocationStore, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{tokens: tokens, accounts: accounts, revoked: revoked, logger: logger}
}

// errRejected marks a credential problem; callers only ever see the uniform 401.
var errRejected = errors.New("credential rejected")

func unauthenticated() error {
	return apperrors.NewUnauthorized("authentication required")
}

// Handle enforces authentication for protected routes.
func (g *Gate) Handle(c *fiber.Ctx) error {
	principal, err := g.authenticate(c, c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Optional authenticates when an Authorization header is present and lets
// anonymous requests through otherwise.
func (g *Gate) Optional(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return c.Next()
	}
	principal, err := g.authenticate(c, header)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

func (g *Gate) authenticate(c *fiber.Ctx, header string) (*Principal, error) {
	principal, reason, err := g.resolve(c, header)
	if err == nil {
		return principal, nil
	}
	if errors.Is(err, errRejected) {
		g.logger.Debug("authentication rejected", zap.String("reason", reason), zap.String("path", c.Path()))
		return nil, unauthenticated()
	}
	return nil, apperrors.NewInternalError(err)
}

func (g *Gate) resolve(c *fiber.Ctx, header string) (*Principal, string, error) {
	if header == "" {
		return nil, "missing header", errRejected
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, "malformed header", errRejected
	}

	claims, err := g.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err.Error(), errRejected
	}

	ctx := c.UserContext()
	if g.revoked != nil {
		revoked, err := g.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, "", err
		}
		if revoked {
			return nil, "token revoked", errRejected
		}
	}

	account, err := g.accounts.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "account not found", errRejected
		}
		return nil, "", err
	}

	return &Principal{
		AccountID: account.ID,
		Role:      account.Role,
		Account:   account,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, "", nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
