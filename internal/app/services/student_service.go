package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/escola/internal/app/models"
	"github.com/yigit/escola/internal/app/models/dto"
	"github.com/yigit/escola/internal/app/repositories"
	"github.com/yigit/escola/internal/pkg/apperrors"
	"github.com/yigit/escola/internal/pkg/helpers"
	"github.com/yigit/escola/internal/pkg/validation"
)

// DefaultAllowedExtensions are the photo types accepted when none are configured
var DefaultAllowedExtensions = []string{"png", "jpg", "jpeg", "gif"}

// MaxAge is the highest age accepted on the student form
const MaxAge = 150

// StudentService handles student operations
type StudentService struct {
	studentRepo       repositories.IStudentRepository
	petRepo           repositories.IPetRepository
	allowedExtensions []string
	logger            zerolog.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(
	studentRepo repositories.IStudentRepository,
	petRepo repositories.IPetRepository,
	allowedExtensions []string,
	logger zerolog.Logger,
) *StudentService {
	if len(allowedExtensions) == 0 {
		allowedExtensions = DefaultAllowedExtensions
	}
	return &StudentService{
		studentRepo:       studentRepo,
		petRepo:           petRepo,
		allowedExtensions: allowedExtensions,
		logger:            logger,
	}
}

// List returns one page of students, optionally filtered by name, enrollment code or course
func (s *StudentService) List(ctx context.Context, search string, page int) (*dto.StudentPage, error) {
	search = strings.TrimSpace(search)
	if page < 1 {
		page = helpers.DefaultPage
	}
	offset, limit := helpers.CalculateOffsetLimit(page)

	students, total, err := s.studentRepo.List(ctx, search, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}

	return &dto.StudentPage{
		Students:   students,
		Search:     search,
		Pagination: helpers.NewPaginationInfo(total, page),
	}, nil
}

// Get returns a student with its pets
func (s *StudentService) Get(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pets, err := s.petRepo.ListByStudent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error loading student pets: %w", err)
	}
	student.Pets = pets
	return student, nil
}

// Options lists all students by name for select inputs
func (s *StudentService) Options(ctx context.Context) ([]models.Student, error) {
	return s.studentRepo.ListAll(ctx)
}

// parseForm trims and validates the form into the editable student fields
func (s *StudentService) parseForm(form dto.StudentForm) (*models.Student, error) {
	form.EnrollmentCode = strings.TrimSpace(form.EnrollmentCode)
	form.Name = strings.TrimSpace(form.Name)
	form.Course = strings.TrimSpace(form.Course)
	form.Sex = strings.ToUpper(strings.TrimSpace(form.Sex))

	if form.EnrollmentCode == "" || form.Name == "" {
		return nil, apperrors.NewValidationError("Matrícula e nome são obrigatórios.")
	}
	if err := validation.Struct(form); err != nil {
		return nil, err
	}

	student := &models.Student{
		EnrollmentCode: form.EnrollmentCode,
		Name:           form.Name,
		Course:         optionalString(form.Course),
		Sex:            optionalString(form.Sex),
	}

	if age := strings.TrimSpace(form.Age); age != "" {
		n, err := strconv.Atoi(age)
		switch {
		case errors.Is(err, strconv.ErrRange), err == nil && n > MaxAge:
			return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, fmt.Sprintf("Idade deve ser no máximo %d.", MaxAge)).WithField("Age")
		case err != nil:
			return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "Idade deve ser um número inteiro.").WithField("Age")
		case n < 0:
			return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "Idade deve ser no mínimo 0.").WithField("Age")
		}
		student.Age = &n
	}
	return student, nil
}

// applyPhoto stores the upload in student when its extension is allowed. Other files are ignored.
func (s *StudentService) applyPhoto(student *models.Student, photo *dto.PhotoUpload) bool {
	if photo == nil || photo.Filename == "" || !helpers.HasAllowedExtension(photo.Filename, s.allowedExtensions) {
		if photo != nil && photo.Filename != "" {
			s.logger.Debug().Str("filename", photo.Filename).Msg("Ignoring photo with unsupported extension")
		}
		return false
	}

	filename := helpers.SecureFilename(photo.Filename)
	if helpers.FileExtension(filename) == "" {
		filename = "foto." + helpers.FileExtension(photo.Filename)
	}
	student.Photo = photo.Data
	student.PhotoFilename = &filename
	return true
}

// Create validates and stores a new student
func (s *StudentService) Create(ctx context.Context, form dto.StudentForm, photo *dto.PhotoUpload) (*models.Student, error) {
	student, err := s.parseForm(form)
	if err != nil {
		return nil, err
	}

	taken, err := s.studentRepo.EnrollmentCodeTaken(ctx, student.EnrollmentCode, 0)
	if err != nil {
		return nil, fmt.Errorf("error checking enrollment code: %w", err)
	}
	if taken {
		return nil, apperrors.NewCustomError(apperrors.ErrDuplicateEnrollment, "Matrícula já cadastrada.")
	}

	s.applyPhoto(student, photo)

	if err := s.studentRepo.Create(ctx, student); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEnrollment) {
			return nil, apperrors.NewCustomError(err, "Matrícula já cadastrada.")
		}
		return nil, fmt.Errorf("student creation error: %w", err)
	}

	s.logger.Info().Int64("studentID", student.ID).Str("enrollmentCode", student.EnrollmentCode).Msg("Student registered")
	return student, nil
}

// Update validates and stores the changes of an existing student
func (s *StudentService) Update(ctx context.Context, id int64, form dto.StudentForm, photo *dto.PhotoUpload) (*models.Student, error) {
	current, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	student, err := s.parseForm(form)
	if err != nil {
		return nil, err
	}
	student.ID = current.ID
	student.PhotoFilename = current.PhotoFilename
	student.CreatedAt = current.CreatedAt

	taken, err := s.studentRepo.EnrollmentCodeTaken(ctx, student.EnrollmentCode, id)
	if err != nil {
		return nil, fmt.Errorf("error checking enrollment code: %w", err)
	}
	if taken {
		return nil, apperrors.NewCustomError(apperrors.ErrDuplicateEnrollment, "Matrícula já cadastrada para outro aluno.")
	}

	replacePhoto := s.applyPhoto(student, photo)

	if err := s.studentRepo.Update(ctx, student, replacePhoto); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEnrollment) {
			return nil, apperrors.NewCustomError(err, "Matrícula já cadastrada para outro aluno.")
		}
		return nil, fmt.Errorf("student update error: %w", err)
	}
	return student, nil
}

// Delete removes the student and all of its pets. The removed student is returned for messages.
func (s *StudentService) Delete(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return student, nil
}

// GetPhoto returns the stored photo, or nil when the student has none
func (s *StudentService) GetPhoto(ctx context.Context, id int64) (*models.StudentPhoto, error) {
	photo, err := s.studentRepo.GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(photo.Data) == 0 {
		return nil, nil
	}

	if photo.Filename == "" {
		photo.Filename = "foto.jpg"
	}
	photo.ContentType = helpers.ImageContentType(photo.Filename)
	return photo, nil
}

// ExportJSON returns every student in the export format
func (s *StudentService) ExportJSON(ctx context.Context) ([]dto.StudentExport, error) {
	students, err := s.studentRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error exporting students: %w", err)
	}

	out := make([]dto.StudentExport, 0, len(students))
	for i := range students {
		out = append(out, StudentToExport(&students[i]))
	}
	return out, nil
}

// StudentToExport converts a student into its JSON export shape
func StudentToExport(s *models.Student) dto.StudentExport {
	return dto.StudentExport{
		ID:           s.ID,
		Matricula:    s.EnrollmentCode,
		Nome:         s.Name,
		Curso:        s.Course,
		Idade:        s.Age,
		Sexo:         s.Sex,
		FotoFilename: s.PhotoFilename,
		CreatedAt:    helpers.FormatOptional(&s.CreatedAt, helpers.DateTimeLayout),
		UpdatedAt:    helpers.FormatOptional(&s.UpdatedAt, helpers.DateTimeLayout),
	}
}
