package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/repository"
)

// IssueRepository keeps issues and their status history in memory.
type IssueRepository struct {
	mu      sync.RWMutex
	issues  map[string]domain.Issue
	history *IssueStatusRepository
	now     func() time.Time
}

// NewIssueRepository returns an empty store.
func NewIssueRepository() *IssueRepository {
	return &IssueRepository{
		issues:  make(map[string]domain.Issue),
		history: newIssueStatusRepository(),
		now:     time.Now,
	}
}

// History exposes the audit entries written by UpdateStatus.
func (r *IssueRepository) History() *IssueStatusRepository {
	return r.history
}

var _ repository.IssueRepository = (*IssueRepository)(nil)

func (r *IssueRepository) Create(_ context.Context, issue *domain.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = now
	}
	issue.UpdatedAt = now
	if issue.Images == nil {
		issue.Images = []string{}
	}
	r.issues[issue.ID] = cloneIssue(*issue)
	return nil
}

func (r *IssueRepository) UpdateStatus(_ context.Context, issue *domain.Issue, change *domain.IssueStatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.issues[issue.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	now := r.now()
	stored.Status = issue.Status
	stored.UpdatedAt = now
	issue.UpdatedAt = now
	r.issues[issue.ID] = stored

	change.CreatedAt = now
	r.history.append(*change)
	return nil
}

func (r *IssueRepository) GetByID(_ context.Context, id string) (*domain.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	issue, ok := r.issues[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	found := cloneIssue(issue)
	return &found, nil
}

func (r *IssueRepository) List(_ context.Context, filter repository.IssueFilter) ([]domain.Issue, error) {
	matched := r.matching(filter)
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i].CreatedAt, matched[j].CreatedAt
		if a.Equal(b) {
			return matched[i].ID < matched[j].ID
		}
		if filter.SortAscending {
			return a.Before(b)
		}
		return a.After(b)
	})
	return paginate(matched, filter.Limit, filter.Offset), nil
}

func (r *IssueRepository) Count(_ context.Context, filter repository.IssueFilter) (int64, error) {
	return int64(len(r.matching(filter))), nil
}

// ClearReporter detaches issues from a deleted account, mirroring ON DELETE SET NULL.
func (r *IssueRepository) ClearReporter(accountID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, issue := range r.issues {
		if issue.ReporterID != nil && *issue.ReporterID == accountID {
			issue.ReporterID = nil
			r.issues[id] = issue
		}
	}
}

func (r *IssueRepository) matching(filter repository.IssueFilter) []domain.Issue {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Issue, 0, len(r.issues))
	for _, issue := range r.issues {
		if filter.Category != nil && issue.Category != *filter.Category {
			continue
		}
		if filter.Status != nil && issue.Status != *filter.Status {
			continue
		}
		if city := strings.TrimSpace(filter.City); city != "" && !strings.EqualFold(issue.Location.City, city) {
			continue
		}
		if state := strings.TrimSpace(filter.State); state != "" && !strings.EqualFold(issue.Location.State, state) {
			continue
		}
		if filter.ReporterID != nil && (issue.ReporterID == nil || *issue.ReporterID != *filter.ReporterID) {
			continue
		}
		if filter.Near != nil && !withinBox(issue.Location, *filter.Near) {
			continue
		}
		result = append(result, cloneIssue(issue))
	}
	return result
}

func withinBox(loc domain.Location, near repository.Coordinate) bool {
	tol := domain.ProximityTolerance
	return loc.Latitude >= near.Latitude-tol && loc.Latitude <= near.Latitude+tol &&
		loc.Longitude >= near.Longitude-tol && loc.Longitude <= near.Longitude+tol
}

func cloneIssue(issue domain.Issue) domain.Issue {
	issue.Images = append([]string{}, issue.Images...)
	if issue.Contact != nil {
		contact := *issue.Contact
		issue.Contact = &contact
	}
	if issue.ReporterID != nil {
		id := *issue.ReporterID
		issue.ReporterID = &id
	}
	return issue
}

// IssueStatusRepository keeps lifecycle history in memory.
type IssueStatusRepository struct {
	mu      sync.RWMutex
	changes map[string][]domain.IssueStatusChange
}

func newIssueStatusRepository() *IssueStatusRepository {
	return &IssueStatusRepository{changes: make(map[string][]domain.IssueStatusChange)}
}

var _ repository.IssueStatusRepository = (*IssueStatusRepository)(nil)

func (r *IssueStatusRepository) append(change domain.IssueStatusChange) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes[change.IssueID] = append(r.changes[change.IssueID], change)
}

func (r *IssueStatusRepository) ListByIssue(_ context.Context, issueID string) ([]domain.IssueStatusChange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.IssueStatusChange{}, r.changes[issueID]...), nil
}
