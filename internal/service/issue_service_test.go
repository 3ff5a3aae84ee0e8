package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/events"
	"github.com/spec-kit/civic-report/internal/repository/memory"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

func newIssueFixture(t *testing.T) (*IssueService, *recordedEvents) {
	t.Helper()
	dispatcher := events.NewInMemoryDispatcher(nil)
	rec := recordAll(dispatcher, events.EventIssueSubmitted, events.EventIssueStatusChanged)
	issues := memory.NewIssueRepository()
	svc := NewIssueService(IssueDependencies{
		IssueRepo:   issues,
		HistoryRepo: issues.History(),
		Dispatcher:  dispatcher,
	}, nil)
	return svc, rec
}

func potholeAt(lat, lon float64, city string) SubmitIssueInput {
	return SubmitIssueInput{
		Category: "Pothole",
		Title:    "Deep pothole",
		Location: domain.Location{Latitude: lat, Longitude: lon, City: city},
		Images:   []string{"https://cdn.example.com/a.jpg"},
	}
}

func TestSubmitStartsPending(t *testing.T) {
	svc, rec := newIssueFixture(t)
	reporter := &domain.Account{ID: "u1", Role: domain.RoleUser}

	issue, err := svc.Submit(context.Background(), reporter, potholeAt(12.97, 77.59, "Bengaluru"))
	require.NoError(t, err)
	assert.NotEmpty(t, issue.ID)
	assert.Equal(t, domain.IssueStatusPending, issue.Status)
	require.NotNil(t, issue.ReporterID)
	assert.Equal(t, "u1", *issue.ReporterID)
	assert.False(t, issue.CreatedAt.IsZero())

	require.Len(t, rec.events, 1)
	assert.Equal(t, events.EventIssueSubmitted, rec.events[0].Type)
}

func TestSubmitAnonymousRequiresContact(t *testing.T) {
	svc, _ := newIssueFixture(t)
	input := potholeAt(12.97, 77.59, "Bengaluru")

	_, err := svc.Submit(context.Background(), nil, input)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	input.Contact = &domain.Contact{Name: "Asha", Email: "Asha@Example.com", Phone: "555"}
	issue, err := svc.Submit(context.Background(), nil, input)
	require.NoError(t, err)
	assert.Nil(t, issue.ReporterID)
	require.NotNil(t, issue.Contact)
	assert.Equal(t, "asha@example.com", issue.Contact.Email)
}

func TestSubmitValidation(t *testing.T) {
	svc, _ := newIssueFixture(t)
	reporter := &domain.Account{ID: "u1"}

	cases := map[string]func(*SubmitIssueInput){
		"unknown category": func(in *SubmitIssueInput) { in.Category = "Graffiti" },
		"missing title":    func(in *SubmitIssueInput) { in.Title = "  " },
		"bad latitude":     func(in *SubmitIssueInput) { in.Location.Latitude = 91 },
		"non url image":    func(in *SubmitIssueInput) { in.Images = []string{"not a url"} },
		"too many images": func(in *SubmitIssueInput) {
			in.Images = nil
			for i := 0; i <= domain.MaxIssueImages; i++ {
				in.Images = append(in.Images, fmt.Sprintf("https://cdn.example.com/%d.jpg", i))
			}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := potholeAt(10, 10, "X")
			mutate(&input)
			_, err := svc.Submit(context.Background(), reporter, input)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation), "got %v", err)
		})
	}
}

func TestSetStatusIsForwardOnly(t *testing.T) {
	svc, rec := newIssueFixture(t)
	ctx := context.Background()
	admin := &domain.Account{ID: "admin1", Role: domain.RoleAdmin}
	issue, err := svc.Submit(ctx, admin, potholeAt(1, 1, "A"))
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, admin, issue.ID, "In Progress", "crew dispatched")
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusInProgress, updated.Status)

	_, err = svc.SetStatus(ctx, admin, issue.ID, "InProgress", "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))

	_, err = svc.SetStatus(ctx, admin, issue.ID, "Resolved", "")
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, admin, issue.ID, "Pending", "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))

	stored, err := svc.Get(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusResolved, stored.Status)

	history, err := svc.History(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.IssueStatusPending, history[0].OldStatus)
	assert.Equal(t, "crew dispatched", history[0].Comment)
	assert.Equal(t, domain.IssueStatusResolved, history[1].NewStatus)
	require.NotNil(t, history[1].ChangedBy)
	assert.Equal(t, "admin1", *history[1].ChangedBy)

	// submitted + two transitions
	assert.Len(t, rec.events, 3)
}

type flakyIssueStore struct {
	*memory.IssueRepository
	fail bool
}

func (f *flakyIssueStore) UpdateStatus(ctx context.Context, issue *domain.Issue, change *domain.IssueStatusChange) error {
	if f.fail {
		return errors.New("connection reset")
	}
	return f.IssueRepository.UpdateStatus(ctx, issue, change)
}

func TestSetStatusFailedWriteLeavesIssueRetryable(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	rec := recordAll(dispatcher, events.EventIssueStatusChanged)
	store := &flakyIssueStore{IssueRepository: memory.NewIssueRepository()}
	svc := NewIssueService(IssueDependencies{
		IssueRepo:   store,
		HistoryRepo: store.History(),
		Dispatcher:  dispatcher,
	}, nil)
	ctx := context.Background()
	admin := &domain.Account{ID: "admin1", Role: domain.RoleAdmin}
	issue, err := svc.Submit(ctx, admin, potholeAt(1, 1, "A"))
	require.NoError(t, err)

	store.fail = true
	_, err = svc.SetStatus(ctx, admin, issue.ID, "Resolved", "")
	require.Error(t, err)
	assert.Empty(t, rec.events)

	stored, err := svc.Get(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusPending, stored.Status)
	history, err := svc.History(ctx, issue.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	store.fail = false
	_, err = svc.SetStatus(ctx, admin, issue.ID, "Resolved", "")
	require.NoError(t, err)
	history, err = svc.History(ctx, issue.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	assert.Len(t, rec.events, 1)
}

func TestSetStatusSkipsInProgress(t *testing.T) {
	svc, _ := newIssueFixture(t)
	ctx := context.Background()
	issue, err := svc.Submit(ctx, &domain.Account{ID: "u1"}, potholeAt(1, 1, "A"))
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, &domain.Account{ID: "admin1"}, issue.ID, "Resolved", "")
	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusResolved, updated.Status)
}

func TestSetStatusErrors(t *testing.T) {
	svc, _ := newIssueFixture(t)
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, nil, "missing", "Resolved", "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = svc.SetStatus(ctx, nil, "missing", "Closed", "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = svc.History(ctx, "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestListFilters(t *testing.T) {
	svc, _ := newIssueFixture(t)
	ctx := context.Background()
	u1 := &domain.Account{ID: "u1"}
	u2 := &domain.Account{ID: "u2"}

	first, err := svc.Submit(ctx, u1, potholeAt(12.970, 77.590, "Bengaluru"))
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Now().Add(time.Minute) }
	_, err = svc.Submit(ctx, u2, potholeAt(12.975, 77.595, "bengaluru"))
	require.NoError(t, err)
	garbage := potholeAt(28.61, 77.20, "Delhi")
	garbage.Category = "Garbage"
	_, err = svc.Submit(ctx, u1, garbage)
	require.NoError(t, err)

	page, err := svc.List(ctx, IssueListQuery{City: "BENGALURU"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount)

	lat, lon := 12.971, 77.591
	page, err = svc.List(ctx, IssueListQuery{Latitude: &lat, Longitude: &lon})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.TotalCount)

	page, err = svc.List(ctx, IssueListQuery{Category: "garbage"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Delhi", page.Items[0].Location.City)

	page, err = svc.List(ctx, IssueListQuery{City: "Bengaluru", Sort: "asc"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, first.ID, page.Items[0].ID)

	mine, err := svc.ListMine(ctx, "u1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.TotalCount)

	_, err = svc.List(ctx, IssueListQuery{Latitude: &lat})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = svc.List(ctx, IssueListQuery{Sort: "sideways"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}
