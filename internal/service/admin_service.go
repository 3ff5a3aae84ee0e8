package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-report/internal/auth"
	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/events"
	"github.com/spec-kit/civic-report/internal/repository"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

// RecentWindow is the look-back period for the dashboard's recent sign-ups.
const RecentWindow = 7 * 24 * time.Hour

// AdminService implements account administration.
type AdminService struct {
	accounts   repository.AccountRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewAdminService constructs the service.
func NewAdminService(accounts repository.AccountRepository, dispatcher events.Dispatcher, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{accounts: accounts, dispatcher: dispatcher, logger: logger, now: time.Now}
}

// AccountListQuery selects a page of accounts.
type AccountListQuery struct {
	Page   int
	Limit  int
	Search string
	Role   *domain.Role
}

// ListAccounts returns a page of accounts, newest first.
func (s *AdminService) ListAccounts(ctx context.Context, query AccountListQuery) (*Page[domain.Account], error) {
	page, limit := normalizePagination(query.Page, query.Limit)
	filter := repository.AccountFilter{
		Search: strings.TrimSpace(query.Search),
		Role:   query.Role,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	total, err := s.accounts.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, limit), nil
}

// GetAccount loads one account.
func (s *AdminService) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "user")
	}
	return account, nil
}

// UpdateRoleInput is an admin's request to change another account's role.
type UpdateRoleInput struct {
	TargetID string
	Role     string
	Password string
}

// UpdateRole changes the target's role after the acting admin re-confirms
// their password. Self-demotion is refused before the password is checked.
func (s *AdminService) UpdateRole(ctx context.Context, acting *domain.Account, input UpdateRoleInput) (*domain.Account, error) {
	if acting == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid role", map[string]any{"role": err.Error()})
	}
	if err := auth.CheckRoleChange(acting.ID, input.TargetID, role); err != nil {
		return nil, err
	}
	if input.Password == "" {
		return nil, apperrors.NewValidationError("Password is required to change roles", map[string]any{"password": "required"})
	}
	if !acting.ComparePassword(input.Password) {
		return nil, apperrors.NewUnauthorized("Invalid password")
	}

	target, err := s.accounts.GetByID(ctx, input.TargetID)
	if err != nil {
		return nil, notFoundAs(err, "user")
	}
	if target.Role == role {
		return target, nil
	}

	oldRole := target.Role
	target.Role = role
	if err := s.accounts.Update(ctx, target); err != nil {
		return nil, notFoundAs(err, "user")
	}
	s.logger.Info("account role changed",
		zap.String("account_id", target.ID),
		zap.String("by", acting.ID),
		zap.String("role", string(role)))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventAccountRoleChanged,
		SubjectID: target.ID,
		Actor:     accountActor(acting),
		Payload:   events.AccountRoleChangedPayload{OldRole: oldRole, NewRole: role},
	})
	return target, nil
}

// DeleteAccount removes the target account. Issues it reported are kept.
func (s *AdminService) DeleteAccount(ctx context.Context, acting *domain.Account, targetID string) error {
	if acting == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := auth.CheckDeletion(acting.ID, targetID); err != nil {
		return err
	}
	target, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		return notFoundAs(err, "user")
	}
	if err := s.accounts.Delete(ctx, targetID); err != nil {
		return notFoundAs(err, "user")
	}
	s.logger.Info("account deleted", zap.String("account_id", targetID), zap.String("by", acting.ID))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventAccountDeleted,
		SubjectID: targetID,
		Actor:     accountActor(acting),
		Payload:   events.AccountDeletedPayload{Email: target.Email},
	})
	return nil
}

// DashboardStats aggregates account counts; recent means created within RecentWindow.
func (s *AdminService) DashboardStats(ctx context.Context) (domain.AccountStats, error) {
	return s.accounts.Stats(ctx, s.now().Add(-RecentWindow))
}

func notFoundAs(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, nil)
	}
	return err
}
