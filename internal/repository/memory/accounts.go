// Package memory provides process-local repository implementations used when no
// Postgres DSN is configured and in tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/repository"
)

// AccountRepository is a mutex-guarded map of accounts.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
	now      func() time.Time
}

// NewAccountRepository returns an empty store.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]domain.Account), now: time.Now}
}

var _ repository.AccountRepository = (*AccountRepository)(nil)

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTakenLocked(account.Email, "") {
		return repository.ErrDuplicateEmail
	}
	now := r.now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now
	r.accounts[account.ID] = *account
	return nil
}

func (r *AccountRepository) Update(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.ID]; !ok {
		return pgx.ErrNoRows
	}
	if r.emailTakenLocked(account.Email, account.ID) {
		return repository.ErrDuplicateEmail
	}
	account.UpdatedAt = r.now()
	r.accounts[account.ID] = *account
	return nil
}

func (r *AccountRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.accounts, id)
	return nil
}

func (r *AccountRepository) GetByID(_ context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &account, nil
}

func (r *AccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, account := range r.accounts {
		if strings.EqualFold(account.Email, email) {
			found := account
			return &found, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *AccountRepository) List(_ context.Context, filter repository.AccountFilter) ([]domain.Account, error) {
	matched := r.matching(filter)
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return paginate(matched, filter.Limit, filter.Offset), nil
}

func (r *AccountRepository) Count(_ context.Context, filter repository.AccountFilter) (int64, error) {
	return int64(len(r.matching(filter))), nil
}

func (r *AccountRepository) Stats(_ context.Context, since time.Time) (domain.AccountStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var stats domain.AccountStats
	for _, account := range r.accounts {
		stats.TotalUsers++
		switch account.Role {
		case domain.RoleAdmin:
			stats.TotalAdmins++
		case domain.RoleUser:
			stats.TotalRegularUsers++
		}
		if account.IsVerified {
			stats.VerifiedUsers++
		}
		if !account.CreatedAt.Before(since) {
			stats.RecentUsers++
		}
	}
	return stats, nil
}

func (r *AccountRepository) matching(filter repository.AccountFilter) []domain.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	result := make([]domain.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		if filter.Role != nil && account.Role != *filter.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(account.FullName), search) &&
			!strings.Contains(strings.ToLower(account.Email), search) {
			continue
		}
		result = append(result, account)
	}
	return result
}

func (r *AccountRepository) emailTakenLocked(email, exceptID string) bool {
	for id, account := range r.accounts {
		if id != exceptID && strings.EqualFold(account.Email, email) {
			return true
		}
	}
	return false
}

func paginate[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
