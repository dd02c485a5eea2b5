package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/escola/internal/app/models"
)

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Jo", "%Jo%"},
		{"  Jo  ", "%Jo%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`back\slash`, `%back\\slash%`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, containsPattern(tt.in), tt.in)
	}
}

func TestStudentListQuery(t *testing.T) {
	r := NewStudentRepository(nil)

	sql, args, err := r.listQuery("Jo", 10, 10).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM students")
	assert.Contains(t, sql, "(name ILIKE $1 OR enrollment_code ILIKE $2 OR course ILIKE $3)")
	assert.Contains(t, sql, "ORDER BY name ASC, id ASC LIMIT 10 OFFSET 10")
	assert.NotContains(t, sql, "photo,")
	assert.Equal(t, []interface{}{"%Jo%", "%Jo%", "%Jo%"}, args)

	sql, args, err = r.listQuery("", 0, 10).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "WHERE")
	assert.Empty(t, args)
}

func TestStudentCountQuery(t *testing.T) {
	sql, args, err := NewStudentRepository(nil).countQuery("eng").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM students WHERE (name ILIKE $1 OR enrollment_code ILIKE $2 OR course ILIKE $3)", sql)
	assert.Len(t, args, 3)
}

func TestEnrollmentCodeTakenQuery(t *testing.T) {
	r := NewStudentRepository(nil)

	sql, args, err := r.codeTakenQuery("2024001", 0).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT EXISTS ( SELECT 1 FROM students WHERE (enrollment_code = $1) )", sql)
	assert.Equal(t, []interface{}{"2024001"}, args)

	sql, args, err = r.codeTakenQuery("2024001", 7).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "enrollment_code = $1 AND id <> $2")
	assert.Equal(t, []interface{}{"2024001", int64(7)}, args)
}

func TestStudentUpdateQuery(t *testing.T) {
	r := NewStudentRepository(nil)
	s := &models.Student{ID: 3, EnrollmentCode: "2024003", Name: "Pedro"}

	sql, _, err := r.updateQuery(s, false).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "photo")
	assert.Contains(t, sql, "updated_at = now()")
	assert.Contains(t, sql, "RETURNING updated_at")

	sql, _, err = r.updateQuery(s, true).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "photo = ")
	assert.Contains(t, sql, "photo_filename = ")
}

func TestPetListQuery(t *testing.T) {
	r := NewPetRepository(nil)

	sql, args, err := r.listQuery("Silva", 0, 10).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM pets p JOIN students s ON s.id = p.student_id")
	assert.Contains(t, sql, "(p.nickname ILIKE $1 OR p.breed ILIKE $2 OR s.name ILIKE $3)")
	assert.Contains(t, sql, "ORDER BY p.nickname ASC, p.id ASC LIMIT 10 OFFSET 0")
	assert.Equal(t, []interface{}{"%Silva%", "%Silva%", "%Silva%"}, args)

	sql, _, err = r.countQuery("Silva").ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "JOIN students s ON s.id = p.student_id")
}

func TestStatsQueries(t *testing.T) {
	r := NewStatsRepository(nil)

	sql, _, err := r.byAgeBandQuery().ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE age IS NOT NULL")
	assert.Contains(t, sql, "GROUP BY band")
	for _, band := range models.AgeBands {
		assert.Contains(t, sql, "'"+band+"'")
	}

	sql, _, err = r.byBreedQuery(10).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COALESCE(breed, ''), COUNT(*) FROM pets GROUP BY breed ORDER BY breed LIMIT 10", sql)

	sql, _, err = r.byCourseQuery().ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "GROUP BY course")
}
