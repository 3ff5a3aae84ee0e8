package dto

import (
	"time"

	"github.com/spec-kit/civic-report/internal/domain"
)

// LocationPayload is the wire form of a location.
type LocationPayload struct {
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Street     string   `json:"street,omitempty"`
	Landmark   string   `json:"landmark,omitempty"`
	City       string   `json:"city,omitempty"`
	State      string   `json:"state,omitempty"`
	PostalCode string   `json:"postalCode,omitempty"`
}

// ContactPayload identifies an anonymous reporter.
type ContactPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// SubmitIssueRequest payload for new issues. Status is accepted for
// compatibility with older clients and ignored.
type SubmitIssueRequest struct {
	Category    string           `json:"category"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Location    *LocationPayload `json:"location"`
	Images      []string         `json:"images"`
	Contact     *ContactPayload  `json:"contact"`
	Status      string           `json:"status"`
}

// UpdateIssueStatusRequest payload for admin triage.
type UpdateIssueStatusRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// LocationResponse is the public view of a location.
type LocationResponse struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Street     string  `json:"street,omitempty"`
	Landmark   string  `json:"landmark,omitempty"`
	City       string  `json:"city,omitempty"`
	State      string  `json:"state,omitempty"`
	PostalCode string  `json:"postalCode,omitempty"`
}

// IssueResponse is the public view of an issue. Contact is only set on admin
// views.
type IssueResponse struct {
	ID          string               `json:"id"`
	ReporterID  *string              `json:"reporterId,omitempty"`
	Contact     *ContactPayload      `json:"contact,omitempty"`
	Category    domain.IssueCategory `json:"category"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Location    LocationResponse     `json:"location"`
	Images      []string             `json:"images"`
	Status      domain.IssueStatus   `json:"status"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// NewIssueResponse maps a domain issue without the anonymous reporter's contact.
func NewIssueResponse(i *domain.Issue) IssueResponse {
	resp := IssueResponse{
		ID:          i.ID,
		ReporterID:  i.ReporterID,
		Category:    i.Category,
		Title:       i.Title,
		Description: i.Description,
		Location:    LocationResponse(i.Location),
		Images:      i.Images,
		Status:      i.Status,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	return resp
}

// NewAdminIssueResponse maps a domain issue including contact details.
func NewAdminIssueResponse(i *domain.Issue) IssueResponse {
	resp := NewIssueResponse(i)
	if i.Contact != nil {
		resp.Contact = &ContactPayload{Name: i.Contact.Name, Email: i.Contact.Email, Phone: i.Contact.Phone}
	}
	return resp
}

// IssueListResponse is one page of issues.
type IssueListResponse struct {
	Issues      []IssueResponse `json:"issues"`
	TotalCount  int64           `json:"totalCount"`
	TotalPages  int             `json:"totalPages"`
	CurrentPage int             `json:"currentPage"`
}

// NewIssueResponses maps a slice of issues with the given projection.
func NewIssueResponses(issues []domain.Issue, project func(*domain.Issue) IssueResponse) []IssueResponse {
	out := make([]IssueResponse, 0, len(issues))
	for i := range issues {
		out = append(out, project(&issues[i]))
	}
	return out
}

// StatusChangeResponse is one audit entry.
type StatusChangeResponse struct {
	ID        string             `json:"id"`
	ChangedBy *string            `json:"changedBy,omitempty"`
	OldStatus domain.IssueStatus `json:"oldStatus"`
	NewStatus domain.IssueStatus `json:"newStatus"`
	Comment   string             `json:"comment,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}

// NewStatusChangeResponses maps history entries.
func NewStatusChangeResponses(changes []domain.IssueStatusChange) []StatusChangeResponse {
	out := make([]StatusChangeResponse, 0, len(changes))
	for _, ch := range changes {
		out = append(out, StatusChangeResponse{
			ID:        ch.ID,
			ChangedBy: ch.ChangedBy,
			OldStatus: ch.OldStatus,
			NewStatus: ch.NewStatus,
			Comment:   ch.Comment,
			CreatedAt: ch.CreatedAt,
		})
	}
	return out
}
