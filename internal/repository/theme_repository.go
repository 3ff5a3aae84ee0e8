package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/civic-report/internal/domain"
)

// ThemeRepository persists the single theme record.
type ThemeRepository interface {
	Get(ctx context.Context) (*domain.ThemeSetting, error)
	Replace(ctx context.Context, setting *domain.ThemeSetting) error
}

type themeRepository struct {
	pool *pgxpool.Pool
}

// NewThemeRepository builds repository.
func NewThemeRepository(pool *pgxpool.Pool) ThemeRepository {
	return &themeRepository{pool: pool}
}

func (r *themeRepository) Get(ctx context.Context) (*domain.ThemeSetting, error) {
	var setting domain.ThemeSetting
	if err := r.pool.QueryRow(ctx, `SELECT theme, updated_at FROM theme_settings WHERE id=1`).
		Scan(&setting.Theme, &setting.UpdatedAt); err != nil {
		return nil, err
	}
	return &setting, nil
}

// Replace overwrites the whole row; no field is merged.
func (r *themeRepository) Replace(ctx context.Context, setting *domain.ThemeSetting) error {
	const query = `
        INSERT INTO theme_settings (id, theme, updated_at) VALUES (1, $1, NOW())
        ON CONFLICT (id) DO UPDATE SET theme=EXCLUDED.theme, updated_at=EXCLUDED.updated_at
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, setting.Theme).Scan(&setting.UpdatedAt)
}
