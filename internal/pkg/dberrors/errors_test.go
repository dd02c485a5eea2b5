package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConstraintHelpers(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "students_enrollment_code_key"})
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "pets_student_id_fkey"}

	assert.True(t, IsDuplicateConstraintError(dup, "students_enrollment_code_key"))
	assert.False(t, IsDuplicateConstraintError(dup, "accounts_email_key"))
	assert.False(t, IsForeignKeyViolation(dup, "students_enrollment_code_key"))

	assert.True(t, IsForeignKeyViolation(fk, "pets_student_id_fkey"))
	assert.False(t, IsDuplicateConstraintError(errors.New("plain"), "students_enrollment_code_key"))
}
