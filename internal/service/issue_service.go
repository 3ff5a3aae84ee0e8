package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-report/internal/domain"
	"github.com/spec-kit/civic-report/internal/events"
	"github.com/spec-kit/civic-report/internal/repository"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

// IssueService coordinates issue submission and triage.
type IssueService struct {
	issues     repository.IssueRepository
	history    repository.IssueStatusRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// IssueDependencies bundles repositories for the issue service.
type IssueDependencies struct {
	IssueRepo   repository.IssueRepository
	HistoryRepo repository.IssueStatusRepository
	Dispatcher  events.Dispatcher
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies, logger *zap.Logger) *IssueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IssueService{
		issues:     deps.IssueRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// SubmitIssueInput is a citizen's report. Any client-side status is not part of it.
type SubmitIssueInput struct {
	Category    string
	Title       string
	Description string
	Location    domain.Location
	Images      []string
	Contact     *domain.Contact
}

// Submit records a new Pending issue. reporter is nil for anonymous submissions,
// which must then carry a contact name and email.
func (s *IssueService) Submit(ctx context.Context, reporter *domain.Account, input SubmitIssueInput) (*domain.Issue, error) {
	details := map[string]any{}

	category, err := domain.ParseIssueCategory(input.Category)
	if err != nil {
		details["category"] = err.Error()
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		details["title"] = "title is required"
	}
	if err := input.Location.Validate(); err != nil {
		details["location"] = err.Error()
	}
	images, imgErr := cleanImages(input.Images)
	if imgErr != nil {
		details["images"] = imgErr.Error()
	}

	var contact *domain.Contact
	if reporter == nil {
		contact, err = cleanContact(input.Contact)
		if err != nil {
			details["contact"] = err.Error()
		}
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid issue", details)
	}

	issue := &domain.Issue{
		ID:          uuid.NewString(),
		Contact:     contact,
		Category:    category,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Location:    trimLocation(input.Location),
		Images:      images,
		Status:      domain.IssueStatusPending,
		CreatedAt:   s.now().UTC(),
	}
	if reporter != nil {
		id := reporter.ID
		issue.ReporterID = &id
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}
	s.logger.Info("issue submitted", zap.String("issue_id", issue.ID), zap.String("category", string(category)))
	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventIssueSubmitted,
		SubjectID: issue.ID,
		Actor:     accountActor(reporter),
		Payload: events.IssueSubmittedPayload{
			Category:  issue.Category,
			Title:     issue.Title,
			City:      issue.Location.City,
			Anonymous: reporter == nil,
		},
	})
	return issue, nil
}

// SetStatus moves an issue forward in its lifecycle. The status and its audit
// entry are stored together.
func (s *IssueService) SetStatus(ctx context.Context, acting *domain.Account, issueID, status, comment string) (*domain.Issue, error) {
	next, err := domain.ParseIssueStatus(status)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid status", map[string]any{"status": err.Error()})
	}
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, notFoundAs(err, "issue")
	}
	if !domain.CanTransition(issue.Status, next) {
		return nil, apperrors.NewInvalidTransition(string(issue.Status), string(next))
	}

	old := issue.Status
	change := &domain.IssueStatusChange{
		ID:        uuid.NewString(),
		IssueID:   issue.ID,
		OldStatus: old,
		NewStatus: next,
		Comment:   strings.TrimSpace(comment),
	}
	if acting != nil {
		id := acting.ID
		change.ChangedBy = &id
	}
	issue.Status = next
	if err := s.issues.UpdateStatus(ctx, issue, change); err != nil {
		return nil, notFoundAs(err, "issue")
	}

	publishEvent(ctx, s.dispatcher, events.Event{
		Type:      events.EventIssueStatusChanged,
		SubjectID: issue.ID,
		Actor:     accountActor(acting),
		Payload: events.IssueStatusChangedPayload{
			OldStatus:  old,
			NewStatus:  next,
			Comment:    change.Comment,
			ReporterID: issue.ReporterID,
		},
	})
	return issue, nil
}

// IssueListQuery holds raw listing parameters as received from callers.
type IssueListQuery struct {
	Category   string
	Status     string
	City       string
	State      string
	Latitude   *float64
	Longitude  *float64
	Sort       string
	Page       int
	Limit      int
	ReporterID *string
}

// List returns a filtered page of issues.
func (s *IssueService) List(ctx context.Context, query IssueListQuery) (*Page[domain.Issue], error) {
	page, limit := normalizePagination(query.Page, query.Limit)
	filter := repository.IssueFilter{
		City:       strings.TrimSpace(query.City),
		State:      strings.TrimSpace(query.State),
		ReporterID: query.ReporterID,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}

	details := map[string]any{}
	if query.Category != "" {
		category, err := domain.ParseIssueCategory(query.Category)
		if err != nil {
			details["category"] = err.Error()
		}
		filter.Category = &category
	}
	if query.Status != "" {
		status, err := domain.ParseIssueStatus(query.Status)
		if err != nil {
			details["status"] = err.Error()
		}
		filter.Status = &status
	}
	switch {
	case query.Latitude != nil && query.Longitude != nil:
		if !domain.ValidLatitude(*query.Latitude) || !domain.ValidLongitude(*query.Longitude) {
			details["location"] = "lat or lon out of range"
		}
		filter.Near = &repository.Coordinate{Latitude: *query.Latitude, Longitude: *query.Longitude}
	case query.Latitude != nil || query.Longitude != nil:
		details["location"] = "lat and lon must be given together"
	}
	switch strings.ToLower(strings.TrimSpace(query.Sort)) {
	case "", "desc":
	case "asc":
		filter.SortAscending = true
	default:
		details["sort"] = fmt.Sprintf("unknown sort %q", query.Sort)
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid issue filter", details)
	}

	total, err := s.issues.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items, err := s.issues.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return newPage(items, total, page, limit), nil
}

// ListMine returns the issues reported by accountID, newest first.
func (s *IssueService) ListMine(ctx context.Context, accountID string, page, limit int) (*Page[domain.Issue], error) {
	return s.List(ctx, IssueListQuery{ReporterID: &accountID, Page: page, Limit: limit})
}

// Get loads a single issue.
func (s *IssueService) Get(ctx context.Context, id string) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, "issue")
	}
	return issue, nil
}

// History lists status transitions of an issue, oldest first.
func (s *IssueService) History(ctx context.Context, id string) ([]domain.IssueStatusChange, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.IssueStatusChange{}, nil
	}
	return s.history.ListByIssue(ctx, id)
}

func cleanImages(raw []string) ([]string, error) {
	if len(raw) > domain.MaxIssueImages {
		return nil, fmt.Errorf("at most %d images are allowed", domain.MaxIssueImages)
	}
	images := make([]string, 0, len(raw))
	for _, img := range raw {
		img = strings.TrimSpace(img)
		if img == "" {
			continue
		}
		u, err := url.ParseRequestURI(img)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("image %q is not an http(s) URL", img)
		}
		images = append(images, img)
	}
	return images, nil
}

func cleanContact(raw *domain.Contact) (*domain.Contact, error) {
	if raw == nil {
		return nil, fmt.Errorf("contact name and email are required for anonymous reports")
	}
	contact := &domain.Contact{
		Name:  strings.TrimSpace(raw.Name),
		Email: domain.NormalizeEmail(raw.Email),
		Phone: strings.TrimSpace(raw.Phone),
	}
	if contact.Name == "" {
		return nil, fmt.Errorf("contact name is required for anonymous reports")
	}
	if err := domain.ValidateEmail(contact.Email); err != nil {
		return nil, fmt.Errorf("contact %s", err.Error())
	}
	return contact, nil
}

func trimLocation(loc domain.Location) domain.Location {
	loc.Street = strings.TrimSpace(loc.Street)
	loc.Landmark = strings.TrimSpace(loc.Landmark)
	loc.City = strings.TrimSpace(loc.City)
	loc.State = strings.TrimSpace(loc.State)
	loc.PostalCode = strings.TrimSpace(loc.PostalCode)
	return loc
}
