package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// IssueCategory classifies a civic complaint.
type IssueCategory string

const (
	CategoryPothole            IssueCategory = "Pothole"
	CategoryGarbage            IssueCategory = "Garbage"
	CategoryStreetlightFailure IssueCategory = "StreetlightFailure"
	CategoryWaterLeakage       IssueCategory = "WaterLeakage"
	CategoryRoadDamage         IssueCategory = "RoadDamage"
	CategoryOther              IssueCategory = "Other"
)

var categories = []IssueCategory{
	CategoryPothole,
	CategoryGarbage,
	CategoryStreetlightFailure,
	CategoryWaterLeakage,
	CategoryRoadDamage,
	CategoryOther,
}

// ParseIssueCategory matches category names case-insensitively.
func ParseIssueCategory(s string) (IssueCategory, error) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// IssueStatus is a step in the issue lifecycle.
type IssueStatus string

const (
	IssueStatusPending    IssueStatus = "Pending"
	IssueStatusInProgress IssueStatus = "InProgress"
	IssueStatusResolved   IssueStatus = "Resolved"
)

var statusRank = map[IssueStatus]int{
	IssueStatusPending:    0,
	IssueStatusInProgress: 1,
	IssueStatusResolved:   2,
}

// ParseIssueStatus also accepts the "In Progress" label used by the dashboard.
func ParseIssueStatus(s string) (IssueStatus, error) {
	compact := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	for status := range statusRank {
		if strings.EqualFold(string(status), compact) {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// CanTransition reports whether next strictly follows current in the lifecycle.
func CanTransition(current, next IssueStatus) bool {
	from, okFrom := statusRank[current]
	to, okTo := statusRank[next]
	return okFrom && okTo && to > from
}

// Contact identifies an anonymous reporter.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// Location is a coordinate plus advisory address fields.
type Location struct {
	Latitude   float64
	Longitude  float64
	Street     string
	Landmark   string
	City       string
	State      string
	PostalCode string
}

// Validate range-checks the coordinate. NaN is never in range.
func (l Location) Validate() error {
	if !ValidLatitude(l.Latitude) {
		return fmt.Errorf("latitude %v out of range", l.Latitude)
	}
	if !ValidLongitude(l.Longitude) {
		return fmt.Errorf("longitude %v out of range", l.Longitude)
	}
	return nil
}

// ValidLatitude reports whether lat is a finite value within [-90, 90].
func ValidLatitude(lat float64) bool {
	return !math.IsNaN(lat) && lat >= -90 && lat <= 90
}

// ValidLongitude reports whether lon is a finite value within [-180, 180].
func ValidLongitude(lon float64) bool {
	return !math.IsNaN(lon) && lon >= -180 && lon <= 180
}

// MaxIssueImages bounds the number of photo references on one issue.
const MaxIssueImages = 10

// ProximityTolerance is the half-width, in degrees, of the bounding box used for
// coordinate filtering.
const ProximityTolerance = 0.01

// Issue is a citizen-submitted complaint.
type Issue struct {
	ID          string
	ReporterID  *string
	Contact     *Contact
	Category    IssueCategory
	Title       string
	Description string
	Location    Location
	Images      []string
	Status      IssueStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IssueStatusChange is an immutable audit entry for one lifecycle transition.
type IssueStatusChange struct {
	ID        string
	IssueID   string
	ChangedBy *string
	OldStatus IssueStatus
	NewStatus IssueStatus
	Comment   string
	CreatedAt time.Time
}
