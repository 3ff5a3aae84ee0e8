package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/civic-report/internal/domain"
)

// IssueStatusRepository reads lifecycle audit entries. Entries are written by
// IssueRepository.UpdateStatus.
type IssueStatusRepository interface {
	ListByIssue(ctx context.Context, issueID string) ([]domain.IssueStatusChange, error)
}

type issueStatusRepository struct {
	pool *pgxpool.Pool
}

// NewIssueStatusRepository builds repository.
func NewIssueStatusRepository(pool *pgxpool.Pool) IssueStatusRepository {
	return &issueStatusRepository{pool: pool}
}

func (r *issueStatusRepository) ListByIssue(ctx context.Context, issueID string) ([]domain.IssueStatusChange, error) {
	if !validID(issueID) {
		return []domain.IssueStatusChange{}, nil
	}
	const query = `
        SELECT id, issue_id, changed_by, old_status, new_status, comment, created_at
        FROM issue_status_history WHERE issue_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, issueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.IssueStatusChange
	for rows.Next() {
		var change domain.IssueStatusChange
		if err := rows.Scan(
			&change.ID,
			&change.IssueID,
			&change.ChangedBy,
			&change.OldStatus,
			&change.NewStatus,
			&change.Comment,
			&change.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, change)
	}
	return result, rows.Err()
}
