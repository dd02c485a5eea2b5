package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/yigit/escola/internal/app/models"
	"github.com/yigit/escola/internal/app/models/dto"
	"github.com/yigit/escola/internal/app/repositories/repotest"
	"github.com/yigit/escola/internal/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	store     *repotest.Store
	auth      *AuthService
	students  *StudentService
	pets      *PetService
	dashboard *DashboardService
	reports   *ReportService
}

func newFixture() *fixture {
	store := repotest.NewStore()
	studentRepo := repotest.StudentRepo{Store: store}
	petRepo := repotest.PetRepo{Store: store}
	nop := zerolog.Nop()

	return &fixture{
		store:     store,
		auth:      NewAuthService(repotest.AccountRepo{Store: store}, &auth.Hasher{Cost: bcrypt.MinCost}, nop),
		students:  NewStudentService(studentRepo, petRepo, nil, nop),
		pets:      NewPetService(petRepo, studentRepo, nop),
		dashboard: NewDashboardService(studentRepo, petRepo, repotest.StatsRepo{Store: store}),
		reports:   NewReportService(studentRepo, petRepo),
	}
}

func (f *fixture) addStudent(t *testing.T, code, name, course, age, sex string) *models.Student {
	t.Helper()
	s, err := f.students.Create(context.Background(), dto.StudentForm{
		EnrollmentCode: code, Name: name, Course: course, Age: age, Sex: sex,
	}, nil)
	require.NoError(t, err)
	return s
}

func (f *fixture) addPet(t *testing.T, nickname, breed string, ownerID int64) *models.Pet {
	t.Helper()
	p, err := f.pets.Create(context.Background(), dto.PetForm{Nickname: nickname, Breed: breed, OwnerID: ownerID})
	require.NoError(t, err)
	return p
}
