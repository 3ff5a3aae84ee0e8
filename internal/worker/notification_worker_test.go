package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/events"
	"github.com/spec-kit/civic-report/internal/repository/memory"
)

func TestReporterCleanupKeepsIssue(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher(nil)
	issues := memory.NewIssueRepository()
	StartReporterCleanup(dispatcher, issues)

	reporter := "acc-1"
	require.NoError(t, issues.Create(ctx, &domain.Issue{
		ID:         "issue-1",
		ReporterID: &reporter,
		Category:   domain.CategoryPothole,
		Title:      "Hole",
		Status:     domain.IssueStatusPending,
	}))

	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventAccountDeleted, SubjectID: reporter}))

	issue, err := issues.GetByID(ctx, "issue-1")
	require.NoError(t, err)
	assert.Nil(t, issue.ReporterID)
	assert.Equal(t, "Hole", issue.Title)
}
