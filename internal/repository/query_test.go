package repository

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civic-report/internal/domain"
)

func TestAccountWhereEmptyMatchesAll(t *testing.T) {
	where, args := accountWhere(AccountFilter{Search: "   "})
	assert.Equal(t, "1=1", where)
	assert.Empty(t, args)
}

func TestAccountWhereSearchAndRole(t *testing.T) {
	role := domain.RoleAdmin
	where, args := accountWhere(AccountFilter{Search: "Ravi_K", Role: &role})

	assert.Equal(t, "1=1 AND (LOWER(full_name) LIKE $1 OR LOWER(email) LIKE $1) AND role=$2", where)
	assert.Equal(t, []any{`%ravi\_k%`, domain.RoleAdmin}, args)
}

func TestIssueWhereProximityBox(t *testing.T) {
	cat := domain.CategoryPothole
	where, args := issueWhere(IssueFilter{
		Category: &cat,
		City:     "Pune",
		Near:     &Coordinate{Latitude: 18.52, Longitude: 73.85},
	})

	assert.Equal(t,
		"1=1 AND category=$1 AND LOWER(city)=LOWER($2) AND latitude BETWEEN $3 AND $4 AND longitude BETWEEN $5 AND $6",
		where)
	assert.Len(t, args, 6)
	assert.InDelta(t, 18.51, args[2].(float64), 1e-9)
	assert.InDelta(t, 18.53, args[3].(float64), 1e-9)
	assert.InDelta(t, 73.84, args[4].(float64), 1e-9)
	assert.InDelta(t, 73.86, args[5].(float64), 1e-9)
}

func TestIssueListQueryOrderingAndPaging(t *testing.T) {
	query, _ := issueListQuery(IssueFilter{SortAscending: true, Limit: 5, Offset: 10})
	assert.True(t, strings.HasSuffix(query, "ORDER BY created_at ASC, id LIMIT 5 OFFSET 10"), query)

	query, _ = issueListQuery(IssueFilter{})
	assert.True(t, strings.HasSuffix(query, "ORDER BY created_at DESC, id LIMIT 10 OFFSET 0"), query)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	ctx := context.Background()
	accounts := NewAccountRepository(nil)
	issues := NewIssueRepository(nil)
	history := NewIssueStatusRepository(nil)

	for _, id := range []string{"abc", "", "user1", "00000000-0000-0000-0000"} {
		_, err := accounts.GetByID(ctx, id)
		assert.ErrorIs(t, err, pgx.ErrNoRows, id)
		assert.ErrorIs(t, accounts.Delete(ctx, id), pgx.ErrNoRows, id)

		_, err = issues.GetByID(ctx, id)
		assert.ErrorIs(t, err, pgx.ErrNoRows, id)

		changes, err := history.ListByIssue(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, changes)
	}
	assert.True(t, validID("6f1c2a0e-8d4b-4c3a-9f7e-2b5d1e0a9c44"))
}
