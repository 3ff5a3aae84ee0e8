package events

import (
	"time"

	"github.com/spec-kit/civic-report/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueSubmitted     EventType = "issue_submitted"
	EventIssueStatusChanged EventType = "issue_status_changed"
	EventAccountRoleChanged EventType = "account_role_changed"
	EventAccountDeleted     EventType = "account_deleted"
)

// Actor identifies who caused an event. AccountID is nil for anonymous reporters.
type Actor struct {
	AccountID *string     `json:"account_id,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueSubmittedPayload payload.
type IssueSubmittedPayload struct {
	Category  domain.IssueCategory `json:"category"`
	Title     string               `json:"title"`
	City      string               `json:"city,omitempty"`
	Anonymous bool                 `json:"anonymous"`
}

// IssueStatusChangedPayload payload.
type IssueStatusChangedPayload struct {
	OldStatus  domain.IssueStatus `json:"old_status"`
	NewStatus  domain.IssueStatus `json:"new_status"`
	Comment    string             `json:"comment,omitempty"`
	ReporterID *string            `json:"reporter_id,omitempty"`
}

// AccountRoleChangedPayload payload.
type AccountRoleChangedPayload struct {
	OldRole domain.Role `json:"old_role"`
	NewRole domain.Role `json:"new_role"`
}

// AccountDeletedPayload payload.
type AccountDeletedPayload struct {
	Email string `json:"email"`
}
