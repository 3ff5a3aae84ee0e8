package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/civic-report/internal/domain"
)

// Coordinate is a point used for bounding-box proximity filtering.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// IssueFilter captures issue listing parameters.
type IssueFilter struct {
	Category      *domain.IssueCategory
	Status        *domain.IssueStatus
	City          string
	State         string
	ReporterID    *string
	Near          *Coordinate
	SortAscending bool
	Limit         int
	Offset        int
}

// IssueRepository encapsulates issue persistence.
type IssueRepository interface {
	Create(ctx context.Context, issue *domain.Issue) error
	// UpdateStatus stores issue.Status and appends change in a single transaction.
	UpdateStatus(ctx context.Context, issue *domain.Issue, change *domain.IssueStatusChange) error
	GetByID(ctx context.Context, id string) (*domain.Issue, error)
	List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error)
	Count(ctx context.Context, filter IssueFilter) (int64, error)
}

type issueRepository struct {
	pool *pgxpool.Pool
}

// NewIssueRepository instantiates repository.
func NewIssueRepository(pool *pgxpool.Pool) IssueRepository {
	return &issueRepository{pool: pool}
}

const issueColumns = `id, reporter_id, contact_name, contact_email, contact_phone, category, title, description,
               latitude, longitude, street, landmark, city, state, postal_code, images, status, created_at, updated_at`

func (r *issueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	const query = `
        INSERT INTO issues (id, reporter_id, contact_name, contact_email, contact_phone, category, title, description,
            latitude, longitude, street, landmark, city, state, postal_code, images, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
        RETURNING created_at, updated_at`

	var contact domain.Contact
	if issue.Contact != nil {
		contact = *issue.Contact
	}
	images := issue.Images
	if images == nil {
		images = []string{}
	}
	loc := issue.Location
	return r.pool.QueryRow(ctx, query,
		issue.ID,
		issue.ReporterID,
		contact.Name,
		contact.Email,
		contact.Phone,
		issue.Category,
		issue.Title,
		issue.Description,
		loc.Latitude,
		loc.Longitude,
		loc.Street,
		loc.Landmark,
		loc.City,
		loc.State,
		loc.PostalCode,
		images,
		issue.Status,
	).Scan(&issue.CreatedAt, &issue.UpdatedAt)
}

func (r *issueRepository) UpdateStatus(ctx context.Context, issue *domain.Issue, change *domain.IssueStatusChange) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
        UPDATE issues SET status=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING updated_at`, issue.Status, issue.ID).Scan(&issue.UpdatedAt)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
        INSERT INTO issue_status_history (id, issue_id, changed_by, old_status, new_status, comment)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`,
		change.ID,
		change.IssueID,
		change.ChangedBy,
		change.OldStatus,
		change.NewStatus,
		change.Comment,
	).Scan(&change.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *issueRepository) GetByID(ctx context.Context, id string) (*domain.Issue, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	query := `SELECT ` + issueColumns + ` FROM issues WHERE id=$1`
	return scanIssue(r.pool.QueryRow(ctx, query, id))
}

func (r *issueRepository) List(ctx context.Context, filter IssueFilter) ([]domain.Issue, error) {
	query, args := issueListQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *issue)
	}
	return result, rows.Err()
}

func (r *issueRepository) Count(ctx context.Context, filter IssueFilter) (int64, error) {
	where, args := issueWhere(filter)
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM issues WHERE `+where, args...).Scan(&total)
	return total, err
}

func issueListQuery(filter IssueFilter) (string, []any) {
	where, args := issueWhere(filter)
	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM issues WHERE %s ORDER BY created_at %s, id LIMIT %d OFFSET %d`,
		issueColumns, where, direction, limit, offset)
	return query, args
}

func issueWhere(filter IssueFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		args = append(args, city)
		clauses = append(clauses, fmt.Sprintf("LOWER(city)=LOWER($%d)", len(args)))
	}
	if state := strings.TrimSpace(filter.State); state != "" {
		args = append(args, state)
		clauses = append(clauses, fmt.Sprintf("LOWER(state)=LOWER($%d)", len(args)))
	}
	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		clauses = append(clauses, fmt.Sprintf("reporter_id=$%d", len(args)))
	}
	if filter.Near != nil {
		args = append(args,
			filter.Near.Latitude-domain.ProximityTolerance,
			filter.Near.Latitude+domain.ProximityTolerance,
			filter.Near.Longitude-domain.ProximityTolerance,
			filter.Near.Longitude+domain.ProximityTolerance,
		)
		n := len(args)
		clauses = append(clauses, fmt.Sprintf("latitude BETWEEN $%d AND $%d AND longitude BETWEEN $%d AND $%d", n-3, n-2, n-1, n))
	}
	return strings.Join(clauses, " AND "), args
}

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var (
		issue   domain.Issue
		contact domain.Contact
	)
	if err := row.Scan(
		&issue.ID,
		&issue.ReporterID,
		&contact.Name,
		&contact.Email,
		&contact.Phone,
		&issue.Category,
		&issue.Title,
		&issue.Description,
		&issue.Location.Latitude,
		&issue.Location.Longitude,
		&issue.Location.Street,
		&issue.Location.Landmark,
		&issue.Location.City,
		&issue.Location.State,
		&issue.Location.PostalCode,
		&issue.Images,
		&issue.Status,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if contact != (domain.Contact{}) {
		issue.Contact = &contact
	}
	return &issue, nil
}
