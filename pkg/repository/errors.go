package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the domain layers care about.
const (
	codeUniqueViolation = "23505"
	codeForeignKey      = "23503"
)

// MapError turns a missing row into notFound and a unique violation into
// duplicate. A foreign key violation means the parent row is gone, so it
// also maps to notFound. Anything else passes through.
func MapError(err, notFound, duplicate error) error {
	switch code := sqlState(err); {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows), code == codeForeignKey:
		return notFound
	case code == codeUniqueViolation:
		return duplicate
	default:
		return err
	}
}

// Constraint reports which named constraint a PostgreSQL error violated.
func Constraint(err error) (string, bool) {
	if pgErr, ok := asPgError(err); ok && pgErr.ConstraintName != "" {
		return pgErr.ConstraintName, true
	}
	return "", false
}

func sqlState(err error) string {
	if pgErr, ok := asPgError(err); ok {
		return pgErr.Code
	}
	return ""
}

func asPgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if err != nil && errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}
