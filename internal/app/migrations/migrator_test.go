package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(embedMigrations, migrationsDir+"/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, name := range files {
		body, err := fs.ReadFile(embedMigrations, name)
		require.NoError(t, err)
		assert.Contains(t, string(body), "-- +goose Up", name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestInitMigrationConstraints(t *testing.T) {
	body, err := fs.ReadFile(embedMigrations, migrationsDir+"/00001_init.sql")
	require.NoError(t, err)
	sql := string(body)

	// repositories match on these names
	for _, constraint := range []string{
		"accounts_username_key",
		"accounts_email_key",
		"students_enrollment_code_key",
		"pets_student_id_fkey",
	} {
		assert.Contains(t, sql, constraint)
	}
	assert.False(t, strings.Contains(strings.ToUpper(sql), "ON DELETE CASCADE"))
}
