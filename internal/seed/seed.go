// Package seed creates the default admin account and the sample students and pets.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/escola/internal/app/models"
	appRepos "github.com/yigit/escola/internal/app/repositories"
)

// Admin holds the credentials of the bootstrap administrator
type Admin struct {
	Username string
	Email    string
	Password string
	FullName string
}

// DefaultAdmin is used when the create-admin command gets no flags
var DefaultAdmin = Admin{
	Username: "admin",
	Email:    "admin@escola.com",
	Password: "admin123",
	FullName: "Administrador do Sistema",
}

// AdminCreator creates the administrator unless the username already exists
type AdminCreator interface {
	CreateAdmin(ctx context.Context, username, email, fullName, password string) (*appModels.Account, bool, error)
}

// CreateAdmin creates the administrator account. It reports false when the account already existed.
func CreateAdmin(ctx context.Context, creator AdminCreator, admin Admin, lgr zerolog.Logger) (bool, error) {
	account, created, err := creator.CreateAdmin(ctx, admin.Username, admin.Email, admin.FullName, admin.Password)
	if err != nil {
		lgr.Error().Err(err).Str("username", admin.Username).Msg("Error creating admin account")
		return false, err
	}
	if !created {
		lgr.Info().Str("username", account.Username).Msg("Admin account already exists, skipping creation")
		return false, nil
	}
	lgr.Info().Int64("accountID", account.ID).Str("username", account.Username).Msg("Admin account created")
	return true, nil
}

type samplePet struct {
	nickname  string
	breed     string
	birthDate time.Time
	owner     int // index into sampleStudents
}

var sampleStudents = []appModels.Student{
	{EnrollmentCode: "2024001", Name: "João Silva", Course: ptr("Engenharia"), Age: ptr(20), Sex: ptr("M")},
	{EnrollmentCode: "2024002", Name: "Maria Santos", Course: ptr("Medicina"), Age: ptr(22), Sex: ptr("F")},
	{EnrollmentCode: "2024003", Name: "Pedro Oliveira", Course: ptr("Direito"), Age: ptr(21), Sex: ptr("M")},
	{EnrollmentCode: "2024004", Name: "Ana Costa", Course: ptr("Arquitetura"), Age: ptr(23), Sex: ptr("F")},
	{EnrollmentCode: "2024005", Name: "Carlos Souza", Course: ptr("Engenharia"), Age: ptr(19), Sex: ptr("M")},
}

var samplePets = []samplePet{
	{nickname: "Rex", breed: "Labrador", birthDate: date(2020, time.May, 15), owner: 0},
	{nickname: "Mimi", breed: "Siamês", birthDate: date(2021, time.March, 20), owner: 1},
	{nickname: "Bob", breed: "Bulldog", birthDate: date(2019, time.August, 10), owner: 2},
	{nickname: "Luna", breed: "Golden Retriever", birthDate: date(2020, time.December, 5), owner: 3},
}

// Result counts what SampleData inserted
type Result struct {
	Students int
	Pets     int
}

// SampleData inserts the sample students and pets when no student exists yet
func SampleData(ctx context.Context, students appRepos.IStudentRepository, pets appRepos.IPetRepository, lgr zerolog.Logger) (Result, error) {
	var result Result

	count, err := students.Count(ctx)
	if err != nil {
		return result, fmt.Errorf("error counting students: %w", err)
	}
	if count > 0 {
		lgr.Info().Int64("students", count).Msg("Students already present, skipping sample data")
		return result, nil
	}

	lgr.Info().Msg("Creating sample data...")
	var finalErr error // collect errors without stopping

	ids := make([]int64, len(sampleStudents))
	for i := range sampleStudents {
		student := sampleStudents[i]
		if err := students.Create(ctx, &student); err != nil {
			lgr.Error().Err(err).Str("enrollmentCode", student.EnrollmentCode).Msg("Error creating sample student")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		ids[i] = student.ID
		result.Students++
	}

	for _, p := range samplePets {
		ownerID := ids[p.owner]
		if ownerID == 0 {
			continue
		}
		pet := &appModels.Pet{
			Nickname:  p.nickname,
			Breed:     ptr(p.breed),
			BirthDate: ptr(p.birthDate),
			StudentID: ownerID,
		}
		if err := pets.Create(ctx, pet); err != nil {
			lgr.Error().Err(err).Str("nickname", p.nickname).Msg("Error creating sample pet")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		result.Pets++
	}

	lgr.Info().Int("students", result.Students).Int("pets", result.Pets).Msg("Sample data created")
	return result, finalErr
}

func ptr[T any](v T) *T {
	return &v
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
