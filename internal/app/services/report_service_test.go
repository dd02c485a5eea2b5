package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/escola/internal/pkg/apperrors"
)

func TestReportService_StudentsPDF(t *testing.T) {
	f := newFixture()
	f.reports.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }
	f.addStudent(t, "2024001", "João Silva", "Engenharia", "20", "M")
	f.addStudent(t, "2024002", "Maria Santos", "", "", "F")

	var buf bytes.Buffer
	filename, err := f.reports.StudentsPDF(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, "relatorio_alunos_20240506_070809.pdf", filename)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestReportService_StudentsPDFEmpty(t *testing.T) {
	f := newFixture()

	var buf bytes.Buffer
	_, err := f.reports.StudentsPDF(context.Background(), &buf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestReportService_MasterDetail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	bruno := f.addStudent(t, "2", "Bruno", "", "", "")
	ana := f.addStudent(t, "1", "Ana", "", "", "")
	f.addPet(t, "Rex", "", ana.ID)
	f.addPet(t, "Bolt", "", bruno.ID)
	f.addPet(t, "Amora", "", ana.ID)

	all, err := f.reports.MasterDetail(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ana", all[0].Name)
	require.Len(t, all[0].Pets, 2)
	assert.Equal(t, "Amora", all[0].Pets[0].Nickname)
	require.Len(t, all[1].Pets, 1)

	one, err := f.reports.MasterDetail(ctx, bruno.ID)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "Bolt", one[0].Pets[0].Nickname)

	_, err = f.reports.MasterDetail(ctx, 999)
	assert.True(t, errors.Is(err, apperrors.ErrStudentNotFound))
}

func TestReportService_MasterDetailWithoutPets(t *testing.T) {
	f := newFixture()
	s := f.addStudent(t, "1", "Ana", "", "", "")

	got, err := f.reports.MasterDetail(context.Background(), s.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Pets)
}
