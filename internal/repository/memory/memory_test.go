package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/repository"
)

func TestAccountRepositoryEmailUniqueCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	require.NoError(t, repo.Create(ctx, &domain.Account{ID: "a", Email: "meera@city.gov"}))
	err := repo.Create(ctx, &domain.Account{ID: "b", Email: "MEERA@city.gov"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	found, err := repo.GetByEmail(ctx, "Meera@City.gov")
	require.NoError(t, err)
	assert.Equal(t, "a", found.ID)
}

func TestAccountRepositoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &domain.Account{
			ID:        fmt.Sprintf("id-%d", i),
			FullName:  fmt.Sprintf("Citizen %d", i),
			Email:     fmt.Sprintf("c%d@city.gov", i),
			Role:      domain.RoleUser,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	page, err := repo.List(ctx, repository.AccountFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "id-2", page[0].ID)
	assert.Equal(t, "id-1", page[1].ID)

	empty, err := repo.List(ctx, repository.AccountFilter{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAccountRepositoryDeleteMissing(t *testing.T) {
	err := NewAccountRepository().Delete(context.Background(), "nope")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestIssueRepositoryProximityAndClearReporter(t *testing.T) {
	ctx := context.Background()
	repo := NewIssueRepository()
	reporter := "acct-1"
	require.NoError(t, repo.Create(ctx, &domain.Issue{ID: "near", ReporterID: &reporter,
		Location: domain.Location{Latitude: 12.971, Longitude: 77.594}}))
	require.NoError(t, repo.Create(ctx, &domain.Issue{ID: "far",
		Location: domain.Location{Latitude: 12.99, Longitude: 77.594}}))

	found, err := repo.List(ctx, repository.IssueFilter{Near: &repository.Coordinate{Latitude: 12.97, Longitude: 77.59}})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "near", found[0].ID)

	repo.ClearReporter(reporter)
	issue, err := repo.GetByID(ctx, "near")
	require.NoError(t, err)
	assert.Nil(t, issue.ReporterID)
}

func TestIssueRepositoryUpdateStatusRecordsHistory(t *testing.T) {
	ctx := context.Background()
	repo := NewIssueRepository()
	require.NoError(t, repo.Create(ctx, &domain.Issue{ID: "i1", Status: domain.IssueStatusPending}))

	issue := &domain.Issue{ID: "i1", Status: domain.IssueStatusResolved}
	change := &domain.IssueStatusChange{ID: "c1", IssueID: "i1",
		OldStatus: domain.IssueStatusPending, NewStatus: domain.IssueStatusResolved}
	require.NoError(t, repo.UpdateStatus(ctx, issue, change))
	assert.False(t, change.CreatedAt.IsZero())

	stored, err := repo.GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusResolved, stored.Status)

	history, err := repo.History().ListByIssue(ctx, "i1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "c1", history[0].ID)

	missing := &domain.IssueStatusChange{ID: "c2", IssueID: "nope"}
	err = repo.UpdateStatus(ctx, &domain.Issue{ID: "nope"}, missing)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	history, err = repo.History().ListByIssue(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestRevocationStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewRevocationStore()
	require.NoError(t, store.Revoke(ctx, "live", time.Now().Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "stale", time.Now().Add(-time.Second)))

	revoked, err := store.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, revoked)
}
