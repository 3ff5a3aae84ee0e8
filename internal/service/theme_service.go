package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/repository"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

const maxThemeLength = 32

// ThemeService reads and replaces the process-wide theme.
type ThemeService struct {
	themes repository.ThemeRepository
	now    func() time.Time
}

// NewThemeService constructs the service.
func NewThemeService(themes repository.ThemeRepository) *ThemeService {
	return &ThemeService{themes: themes, now: time.Now}
}

// Get returns the stored theme, or the default when none was ever set.
func (s *ThemeService) Get(ctx context.Context) (*domain.ThemeSetting, error) {
	setting, err := s.themes.Get(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.ThemeSetting{Theme: domain.DefaultTheme}, nil
		}
		return nil, err
	}
	return setting, nil
}

// Set replaces the stored theme.
func (s *ThemeService) Set(ctx context.Context, theme string) (*domain.ThemeSetting, error) {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return nil, apperrors.NewValidationError("Theme is required", map[string]any{"theme": "required"})
	}
	if len(theme) > maxThemeLength {
		return nil, apperrors.NewValidationError("Theme is too long", map[string]any{"theme": "at most 32 characters"})
	}
	setting := &domain.ThemeSetting{Theme: theme, UpdatedAt: s.now().UTC()}
	if err := s.themes.Replace(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}
