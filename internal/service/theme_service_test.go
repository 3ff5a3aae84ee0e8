package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/repository/memory"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

func TestThemeRoundTrip(t *testing.T) {
	svc := NewThemeService(memory.NewThemeRepository())
	ctx := context.Background()

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTheme, got.Theme)

	_, err = svc.Set(ctx, " dark ")
	require.NoError(t, err)

	got, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
}

func TestThemeValidation(t *testing.T) {
	svc := NewThemeService(memory.NewThemeRepository())

	_, err := svc.Set(context.Background(), "   ")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = svc.Set(context.Background(), strings.Repeat("x", 33))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}
