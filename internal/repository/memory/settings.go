package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/repository"
)

// ThemeRepository holds the single theme record.
type ThemeRepository struct {
	mu      sync.RWMutex
	setting *domain.ThemeSetting
}

// NewThemeRepository returns a store with no theme set.
func NewThemeRepository() *ThemeRepository {
	return &ThemeRepository{}
}

var _ repository.ThemeRepository = (*ThemeRepository)(nil)

func (r *ThemeRepository) Get(_ context.Context) (*domain.ThemeSetting, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.setting == nil {
		return nil, pgx.ErrNoRows
	}
	found := *r.setting
	return &found, nil
}

func (r *ThemeRepository) Replace(_ context.Context, setting *domain.ThemeSetting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	setting.UpdatedAt = time.Now()
	stored := *setting
	r.setting = &stored
	return nil
}

// RevocationStore tracks revoked token ids until their expiry.
type RevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewRevocationStore returns an empty revocation list.
func NewRevocationStore() *RevocationStore {
	return &RevocationStore{revoked: make(map[string]time.Time)}
}

var _ repository.RevocationStore = (*RevocationStore)(nil)

func (s *RevocationStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = expiresAt
	return nil
}

func (s *RevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiresAt) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}
