package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/civic-report/internal/auth"
	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/events"
	"github.com/spec-kit/civic-report/internal/repository/memory"
)

const testPassword = "correct-horse"

func seedAccount(t *testing.T, repo *memory.AccountRepository, id string, role domain.Role, createdAt time.Time) *domain.Account {
	t.Helper()
	hash, err := auth.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)
	account := &domain.Account{
		ID:           id,
		FullName:     "Name " + id,
		Email:        id + "@example.com",
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), account))
	return account
}

type recordedEvents struct {
	events []events.Event
}

func recordAll(d events.Dispatcher, types ...events.EventType) *recordedEvents {
	rec := &recordedEvents{}
	for _, typ := range types {
		d.Subscribe(typ, func(_ context.Context, e events.Event) error {
			rec.events = append(rec.events, e)
			return nil
		})
	}
	return rec
}
