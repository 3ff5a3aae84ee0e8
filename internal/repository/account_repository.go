package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/civic-report/internal/domain"
)

// AccountFilter captures admin listing parameters.
type AccountFilter struct {
	Search string
	Role   *domain.Role
	Limit  int
	Offset int
}

// AccountRepository defines persistence access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, filter AccountFilter) ([]domain.Account, error)
	Count(ctx context.Context, filter AccountFilter) (int64, error)
	Stats(ctx context.Context, since time.Time) (domain.AccountStats, error)
}

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &accountRepository{pool: pool}
}

const accountColumns = `id, full_name, email, password_hash, role, is_verified, created_at, updated_at`

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (id, full_name, email, password_hash, role, is_verified)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		account.ID,
		account.FullName,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.IsVerified,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts SET full_name=$1, email=$2, password_hash=$3, role=$4, is_verified=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		account.FullName,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.IsVerified,
		account.ID,
	).Scan(&account.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return pgx.ErrNoRows
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if !validID(id) {
		return nil, pgx.ErrNoRows
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email)=LOWER($1)`
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]domain.Account, error) {
	where, args := accountWhere(filter)
	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM accounts WHERE %s ORDER BY created_at DESC, id LIMIT %d OFFSET %d`,
		accountColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *account)
	}
	return result, rows.Err()
}

func (r *accountRepository) Count(ctx context.Context, filter AccountFilter) (int64, error) {
	where, args := accountWhere(filter)
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE `+where, args...).Scan(&total)
	return total, err
}

func (r *accountRepository) Stats(ctx context.Context, since time.Time) (domain.AccountStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE role = 'Admin'),
               COUNT(*) FILTER (WHERE role = 'User'),
               COUNT(*) FILTER (WHERE is_verified),
               COUNT(*) FILTER (WHERE created_at >= $1)
        FROM accounts`

	var stats domain.AccountStats
	err := r.pool.QueryRow(ctx, query, since).Scan(
		&stats.TotalUsers,
		&stats.TotalAdmins,
		&stats.TotalRegularUsers,
		&stats.VerifiedUsers,
		&stats.RecentUsers,
	)
	return stats, err
}

func accountWhere(filter AccountFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(strings.ToLower(search))+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(full_name) LIKE %s OR LOWER(email) LIKE %s)", placeholder, placeholder))
	}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.FullName,
		&account.Email,
		&account.PasswordHash,
		&account.Role,
		&account.IsVerified,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

// escapeLike neutralizes LIKE wildcards so search is a literal substring match.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
