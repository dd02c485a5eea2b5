package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn" // Import pgconn for PgError
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	return hasCode(err, uniqueViolation, constraintName)
}

// IsForeignKeyViolation checks if the error is a PostgreSQL foreign key violation
// for a specific constraint.
func IsForeignKeyViolation(err error, constraintName string) bool {
	return hasCode(err, foreignKeyViolation, constraintName)
}

func hasCode(err error, code, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code && pgErr.ConstraintName == constraintName
}
