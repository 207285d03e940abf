package persistence

import (
	"errors"

	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes that the repositories translate into domain errors.
const (
	pgLockNotAvailable = "55P03" // lock_timeout expired while waiting for a row lock
	pgUniqueViolation  = "23505"
)

// translatePgError maps low-level PostgreSQL failures onto the domain error
// vocabulary so callers never inspect SQLSTATEs. Unrecognized errors pass
// through unchanged.
func translatePgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable:
			return shared.ErrLockTimeout
		case pgUniqueViolation:
			return shared.ErrAlreadyExists
		}
	}
	return err
}
