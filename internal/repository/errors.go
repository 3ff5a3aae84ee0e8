package repository

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateEmail is returned when an account email collides case-insensitively.
var ErrDuplicateEmail = errors.New("email already registered")

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// validID reports whether id can be bound to a UUID column. Lookups by an id
// that fails this check are treated as not found.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
