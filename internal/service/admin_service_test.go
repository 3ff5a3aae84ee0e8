package service

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/events"
	"github.com/spec-kit/civic-report/internal/repository/memory"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

func newAdminFixture(t *testing.T) (*AdminService, *memory.AccountRepository, *recordedEvents) {
	t.Helper()
	repo := memory.NewAccountRepository()
	dispatcher := events.NewInMemoryDispatcher(nil)
	rec := recordAll(dispatcher, events.EventAccountRoleChanged, events.EventAccountDeleted)
	return NewAdminService(repo, dispatcher, nil), repo, rec
}

func TestListAccountsPagination(t *testing.T) {
	svc, repo, _ := newAdminFixture(t)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 25; i++ {
		seedAccount(t, repo, fmt.Sprintf("acc-%02d", i), domain.RoleUser, base.Add(time.Duration(i)*time.Minute))
	}

	page, err := svc.ListAccounts(context.Background(), AccountListQuery{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, int64(25), page.TotalCount)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
	// newest first: page 2 starts at the 11th newest
	assert.Equal(t, "acc-14", page.Items[0].ID)

	last, err := svc.ListAccounts(context.Background(), AccountListQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, last.Items, 5)

	defaults, err := svc.ListAccounts(context.Background(), AccountListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, defaults.CurrentPage)
	assert.Len(t, defaults.Items, 10)
}

func TestListAccountsHugePageIsEmpty(t *testing.T) {
	svc, repo, _ := newAdminFixture(t)
	seedAccount(t, repo, "only", domain.RoleUser, time.Now())

	page, err := svc.ListAccounts(context.Background(), AccountListQuery{Page: math.MaxInt, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, int64(1), page.TotalCount)
	assert.Equal(t, maxPage, page.CurrentPage)

	p, l := normalizePagination(math.MaxInt, math.MaxInt)
	assert.Equal(t, maxPage, p)
	assert.Equal(t, maxPageSize, l)
	assert.Positive(t, (p-1)*l)
}

func TestListAccountsSearchAndRole(t *testing.T) {
	svc, repo, _ := newAdminFixture(t)
	now := time.Now()
	seedAccount(t, repo, "alice", domain.RoleUser, now)
	seedAccount(t, repo, "bob", domain.RoleAdmin, now)

	page, err := svc.ListAccounts(context.Background(), AccountListQuery{Search: "ALI"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alice", page.Items[0].ID)

	admin := domain.RoleAdmin
	page, err = svc.ListAccounts(context.Background(), AccountListQuery{Role: &admin})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "bob", page.Items[0].ID)

	page, err = svc.ListAccounts(context.Background(), AccountListQuery{Search: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalPages)
}

func TestUpdateRoleScenario(t *testing.T) {
	svc, repo, rec := newAdminFixture(t)
	ctx := context.Background()
	admin1 := seedAccount(t, repo, "admin1", domain.RoleAdmin, time.Now())
	seedAccount(t, repo, "user1", domain.RoleUser, time.Now())

	updated, err := svc.UpdateRole(ctx, admin1, UpdateRoleInput{TargetID: "user1", Role: "Admin", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	require.Len(t, rec.events, 1)
	assert.Equal(t, events.EventAccountRoleChanged, rec.events[0].Type)

	_, err = svc.UpdateRole(ctx, admin1, UpdateRoleInput{TargetID: "admin1", Role: "User", Password: testPassword})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSelfDemotion))

	_, err = svc.UpdateRole(ctx, admin1, UpdateRoleInput{TargetID: "admin1", Role: "User", Password: "wrong-password"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSelfDemotion))

	_, err = svc.UpdateRole(ctx, admin1, UpdateRoleInput{TargetID: "admin1", Role: "User"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSelfDemotion))

	stored, err := repo.GetByID(ctx, "admin1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
}

func TestUpdateRoleWrongPasswordDoesNotMutate(t *testing.T) {
	svc, repo, rec := newAdminFixture(t)
	ctx := context.Background()
	admin1 := seedAccount(t, repo, "admin1", domain.RoleAdmin, time.Now())
	seedAccount(t, repo, "user1", domain.RoleUser, time.Now())

	_, err := svc.UpdateRole(ctx, admin1, UpdateRoleInput{TargetID: "user1", Role: "Admin", Password: "nope-nope"})
	require.Error(t, err)
	assert.Equal(t, 401, apperrors.ToDomainError(err).HTTPStatus)

	stored, err := repo.GetByID(ctx, "user1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, stored.Role)
	assert.Empty(t, rec.events)
}

func TestUpdateRoleValidationAndMissingTarget(t *testing.T) {
	svc, repo, _ := newAdminFixture(t)
	ctx := context.Background()
	admin1 := seedAccount(t, repo, "admin1", domain.RoleAdmin, time.Now())

	_, err := svc.UpdateRole(ctx, admin1, UpdateRoleInput{TargetID: "x", Role: "Superuser", Password: testPassword})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = svc.UpdateRole(ctx, admin1, UpdateRoleInput{TargetID: "x", Role: "Admin"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = svc.UpdateRole(ctx, admin1, UpdateRoleInput{TargetID: "ghost", Role: "Admin", Password: testPassword})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestUpdateRoleSameRoleIsSilent(t *testing.T) {
	svc, repo, rec := newAdminFixture(t)
	admin1 := seedAccount(t, repo, "admin1", domain.RoleAdmin, time.Now())
	seedAccount(t, repo, "user1", domain.RoleUser, time.Now())

	got, err := svc.UpdateRole(context.Background(), admin1, UpdateRoleInput{TargetID: "user1", Role: "User", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, got.Role)
	assert.Empty(t, rec.events)
}

func TestDeleteAccount(t *testing.T) {
	svc, repo, rec := newAdminFixture(t)
	ctx := context.Background()
	admin1 := seedAccount(t, repo, "admin1", domain.RoleAdmin, time.Now())
	seedAccount(t, repo, "user1", domain.RoleUser, time.Now())

	err := svc.DeleteAccount(ctx, admin1, "admin1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSelfDeletion))

	require.NoError(t, svc.DeleteAccount(ctx, admin1, "user1"))
	_, err = svc.GetAccount(ctx, "user1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	err = svc.DeleteAccount(ctx, admin1, "user1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	require.Len(t, rec.events, 1)
	assert.Equal(t, events.EventAccountDeleted, rec.events[0].Type)
	assert.Equal(t, "user1", rec.events[0].SubjectID)
}

func TestDashboardStats(t *testing.T) {
	svc, repo, _ := newAdminFixture(t)
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	seedAccount(t, repo, "admin1", domain.RoleAdmin, now.Add(-time.Hour))
	seedAccount(t, repo, "fresh", domain.RoleUser, now.Add(-6*24*time.Hour))
	old := seedAccount(t, repo, "old", domain.RoleUser, now.Add(-8*24*time.Hour))
	old.IsVerified = true
	require.NoError(t, repo.Update(context.Background(), old))

	stats, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalUsers)
	assert.Equal(t, int64(1), stats.TotalAdmins)
	assert.Equal(t, int64(2), stats.TotalRegularUsers)
	assert.Equal(t, int64(1), stats.VerifiedUsers)
	assert.Equal(t, int64(2), stats.RecentUsers)
}
