package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/escola/internal/app/models/dto"
	"github.com/yigit/escola/internal/pkg/apperrors"
)

func TestStudentService_CreateValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		form dto.StudentForm
	}{
		{"missing code", dto.StudentForm{Name: "Ana"}},
		{"missing name", dto.StudentForm{EnrollmentCode: "1"}},
		{"blank name", dto.StudentForm{EnrollmentCode: "1", Name: "   "}},
		{"bad age", dto.StudentForm{EnrollmentCode: "1", Name: "Ana", Age: "vinte"}},
		{"negative age", dto.StudentForm{EnrollmentCode: "1", Name: "Ana", Age: "-1"}},
		{"age above max", dto.StudentForm{EnrollmentCode: "1", Name: "Ana", Age: "151"}},
		{"age out of int range", dto.StudentForm{EnrollmentCode: "1", Name: "Ana", Age: "99999999999999999999"}},
		{"bad sex", dto.StudentForm{EnrollmentCode: "1", Name: "Ana", Sex: "X"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.students.Create(ctx, tt.form, nil)
			assert.True(t, errors.Is(err, apperrors.ErrValidationFailed), "got %v", err)
		})
	}
	assert.Empty(t, f.store.Students)
}

func TestStudentService_AgeUpperBound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.students.Create(ctx, dto.StudentForm{EnrollmentCode: "x1", Name: "Big", Age: "9999999999"}, nil)
	require.Error(t, err)
	msg, ok := apperrors.UserMessage(err)
	require.True(t, ok)
	assert.Equal(t, "Idade deve ser no máximo 150.", msg)

	s, err := f.students.Create(ctx, dto.StudentForm{EnrollmentCode: "x2", Name: "Old", Age: "150"}, nil)
	require.NoError(t, err)
	require.NotNil(t, s.Age)
	assert.Equal(t, 150, *s.Age)
}

func TestStudentService_CreateNormalizesFields(t *testing.T) {
	f := newFixture()
	s, err := f.students.Create(context.Background(), dto.StudentForm{
		EnrollmentCode: " 2024001 ", Name: " João Silva ", Course: "", Age: "", Sex: "m",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "2024001", s.EnrollmentCode)
	assert.Equal(t, "João Silva", s.Name)
	assert.Nil(t, s.Course)
	assert.Nil(t, s.Age)
	require.NotNil(t, s.Sex)
	assert.Equal(t, "M", *s.Sex)
}

func TestStudentService_DuplicateEnrollmentKeepsOriginal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	original := f.addStudent(t, "2024001", "João Silva", "Engenharia", "20", "M")

	_, err := f.students.Create(ctx, dto.StudentForm{EnrollmentCode: "2024001", Name: "Outro Nome"}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateEnrollment))
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateKey))

	require.Len(t, f.store.Students, 1)
	stored := f.store.Students[original.ID]
	assert.Equal(t, "João Silva", stored.Name)
	assert.Equal(t, "Engenharia", *stored.Course)
}

func TestStudentService_UpdateDuplicateCheckExcludesSelf(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.addStudent(t, "A1", "Ana", "", "", "")
	b := f.addStudent(t, "B1", "Bruno", "", "", "")

	// keeping its own code is fine
	updated, err := f.students.Update(ctx, a.ID, dto.StudentForm{EnrollmentCode: "A1", Name: "Ana Paula", Age: "22"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ana Paula", f.store.Students[a.ID].Name)
	assert.Equal(t, 22, *updated.Age)

	_, err = f.students.Update(ctx, b.ID, dto.StudentForm{EnrollmentCode: "A1", Name: "Bruno"}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateEnrollment))
	msg, _ := apperrors.UserMessage(err)
	assert.Equal(t, "Matrícula já cadastrada para outro aluno.", msg)
	assert.Equal(t, "B1", f.store.Students[b.ID].EnrollmentCode)

	_, err = f.students.Update(ctx, 404, dto.StudentForm{EnrollmentCode: "Z", Name: "Z"}, nil)
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestStudentService_Photo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	png := []byte{0x89, 'P', 'N', 'G'}

	s, err := f.students.Create(ctx, dto.StudentForm{EnrollmentCode: "P1", Name: "Com Foto"},
		&dto.PhotoUpload{Filename: "../minha foto.PNG", Data: png})
	require.NoError(t, err)

	photo, err := f.students.GetPhoto(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, photo)
	assert.Equal(t, png, photo.Data)
	assert.Equal(t, "minha_foto.PNG", photo.Filename)
	assert.Equal(t, "image/png", photo.ContentType)

	// unsupported extension is ignored and the stored photo stays
	_, err = f.students.Update(ctx, s.ID, dto.StudentForm{EnrollmentCode: "P1", Name: "Com Foto"},
		&dto.PhotoUpload{Filename: "virus.exe", Data: []byte("MZ")})
	require.NoError(t, err)
	photo, err = f.students.GetPhoto(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, png, photo.Data)

	// a new valid photo replaces it
	_, err = f.students.Update(ctx, s.ID, dto.StudentForm{EnrollmentCode: "P1", Name: "Com Foto"},
		&dto.PhotoUpload{Filename: "nova.gif", Data: []byte("GIF89a")})
	require.NoError(t, err)
	photo, err = f.students.GetPhoto(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "nova.gif", photo.Filename)
	assert.Equal(t, "image/gif", photo.ContentType)
}

func TestStudentService_NoPhoto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	s, err := f.students.Create(ctx, dto.StudentForm{EnrollmentCode: "N1", Name: "Sem Foto"},
		&dto.PhotoUpload{Filename: "notes.txt", Data: []byte("hi")})
	require.NoError(t, err)
	assert.False(t, s.HasPhoto())

	photo, err := f.students.GetPhoto(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, photo)

	_, err = f.students.GetPhoto(ctx, 999)
	assert.True(t, errors.Is(err, apperrors.ErrStudentNotFound))
}

func TestStudentService_ListSearchAndPagination(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addStudent(t, "2024001", "João Silva", "Engenharia", "20", "M")
	f.addStudent(t, "2024002", "Maria Santos", "Medicina", "22", "F")
	f.addStudent(t, "2024003", "Pedro Oliveira", "Direito", "21", "M")

	result, err := f.students.List(ctx, "Jo", 1)
	require.NoError(t, err)
	require.Len(t, result.Students, 1)
	assert.Equal(t, "João Silva", result.Students[0].Name)

	// matches course and enrollment code, case-insensitively
	result, err = f.students.List(ctx, "medic", 1)
	require.NoError(t, err)
	require.Len(t, result.Students, 1)
	result, err = f.students.List(ctx, "2024003", 1)
	require.NoError(t, err)
	require.Len(t, result.Students, 1)

	for i := 0; i < 12; i++ {
		f.addStudent(t, fmt.Sprintf("X%02d", i), fmt.Sprintf("Zeca %02d", i), "", "", "")
	}

	result, err = f.students.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, result.Students, 10)
	assert.Equal(t, "João Silva", result.Students[0].Name, "ordered by name")
	assert.Equal(t, int64(15), result.Pagination.TotalItems)
	assert.Equal(t, 2, result.Pagination.TotalPages)
	assert.True(t, result.Pagination.HasNext)

	result, err = f.students.List(ctx, "", 2)
	require.NoError(t, err)
	assert.Len(t, result.Students, 5)
	assert.False(t, result.Pagination.HasNext)

	result, err = f.students.List(ctx, "", 9)
	require.NoError(t, err)
	assert.Empty(t, result.Students)

	result, err = f.students.List(ctx, "", -3)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Pagination.CurrentPage)
}

func TestStudentService_DeleteCascadesToPets(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.addStudent(t, "2024001", "João Silva", "", "", "")
	other := f.addStudent(t, "2024002", "Maria Santos", "", "", "")
	f.addPet(t, "Rex", "Labrador", owner.ID)
	f.addPet(t, "Mimi", "Siamês", owner.ID)
	kept := f.addPet(t, "Bolt", "", other.ID)

	deleted, err := f.students.Delete(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "João Silva", deleted.Name)

	for _, p := range f.store.Pets {
		assert.NotEqual(t, owner.ID, p.StudentID, "orphaned pet %s", p.Nickname)
	}
	assert.Contains(t, f.store.Pets, kept.ID)

	_, err = f.students.Delete(ctx, owner.ID)
	assert.True(t, errors.Is(err, apperrors.ErrResourceNotFound))
}

func TestStudentService_GetIncludesPets(t *testing.T) {
	f := newFixture()
	s := f.addStudent(t, "1", "Ana", "", "", "")
	f.addPet(t, "Rex", "", s.ID)

	got, err := f.students.Get(context.Background(), s.ID)
	require.NoError(t, err)
	require.Len(t, got.Pets, 1)
	assert.Equal(t, "Rex", got.Pets[0].Nickname)
}

func TestStudentService_ExportJSON(t *testing.T) {
	f := newFixture()
	s := f.addStudent(t, "2024001", "João Silva", "Engenharia", "20", "M")

	exports, err := f.students.ExportJSON(context.Background())
	require.NoError(t, err)
	require.Len(t, exports, 1)

	raw, err := json.Marshal(exports)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	row := decoded[0]

	assert.Equal(t, "2024001", row["matricula"])
	assert.Equal(t, "João Silva", row["nome"])
	assert.Equal(t, "Engenharia", row["curso"])
	assert.Equal(t, float64(20), row["idade"])
	assert.Equal(t, "M", row["sexo"])
	assert.Nil(t, row["foto_filename"])
	assert.Equal(t, s.CreatedAt.Format("02/01/2006 15:04"), row["created_at"])
	assert.Regexp(t, `^\d{2}/\d{2}/\d{4} \d{2}:\d{2}$`, row["updated_at"])
}
