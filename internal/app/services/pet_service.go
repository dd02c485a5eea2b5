package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/escola/internal/app/models"
	"github.com/yigit/escola/internal/app/models/dto"
	"github.com/yigit/escola/internal/app/repositories"
	"github.com/yigit/escola/internal/pkg/apperrors"
	"github.com/yigit/escola/internal/pkg/helpers"
	"github.com/yigit/escola/internal/pkg/validation"
)

// PetService handles pet operations
type PetService struct {
	petRepo     repositories.IPetRepository
	studentRepo repositories.IStudentRepository
	logger      zerolog.Logger
}

// NewPetService creates a new PetService
func NewPetService(petRepo repositories.IPetRepository, studentRepo repositories.IStudentRepository, logger zerolog.Logger) *PetService {
	return &PetService{
		petRepo:     petRepo,
		studentRepo: studentRepo,
		logger:      logger,
	}
}

// List returns one page of pets, filtered by nickname, breed or owner name
func (s *PetService) List(ctx context.Context, search string, page int) (*dto.PetPage, error) {
	search = strings.TrimSpace(search)
	if page < 1 {
		page = helpers.DefaultPage
	}
	offset, limit := helpers.CalculateOffsetLimit(page)

	pets, total, err := s.petRepo.List(ctx, search, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing pets: %w", err)
	}

	return &dto.PetPage{
		Pets:       pets,
		Search:     search,
		Pagination: helpers.NewPaginationInfo(total, page),
	}, nil
}

// Get returns a pet by id
func (s *PetService) Get(ctx context.Context, id int64) (*models.Pet, error) {
	return s.petRepo.GetByID(ctx, id)
}

var (
	errPetRequired  = apperrors.NewValidationError("Apelido e dono são obrigatórios.")
	errOwnerMissing = apperrors.NewCustomError(apperrors.ErrOwnerNotFound, "Aluno não encontrado.")
	errBadBirthDate = apperrors.NewCustomError(apperrors.ErrInvalidDate, "Data de nascimento inválida.").WithField("BirthDate")
)

// parseForm validates the form and checks that the owner exists.
// The birth date is nil when the field was left empty.
func (s *PetService) parseForm(ctx context.Context, form dto.PetForm) (*models.Pet, error) {
	form.Nickname = strings.TrimSpace(form.Nickname)
	form.Breed = strings.TrimSpace(form.Breed)
	form.BirthDate = strings.TrimSpace(form.BirthDate)

	if form.Nickname == "" || form.OwnerID <= 0 {
		return nil, errPetRequired
	}
	if err := validation.Struct(form); err != nil {
		return nil, err
	}

	exists, err := s.studentRepo.Exists(ctx, form.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("error checking pet owner: %w", err)
	}
	if !exists {
		return nil, errOwnerMissing
	}

	pet := &models.Pet{
		Nickname:  form.Nickname,
		Breed:     optionalString(form.Breed),
		StudentID: form.OwnerID,
	}

	if form.BirthDate != "" {
		d, err := time.Parse(helpers.InputDateLayout, form.BirthDate)
		if err != nil {
			return nil, errBadBirthDate
		}
		pet.BirthDate = &d
	}
	return pet, nil
}

func ownerError(err error) error {
	if errors.Is(err, apperrors.ErrOwnerNotFound) {
		return errOwnerMissing
	}
	return err
}

// Create validates and stores a new pet
func (s *PetService) Create(ctx context.Context, form dto.PetForm) (*models.Pet, error) {
	pet, err := s.parseForm(ctx, form)
	if err != nil {
		return nil, err
	}

	if err := s.petRepo.Create(ctx, pet); err != nil {
		return nil, ownerError(err)
	}
	return pet, nil
}

// Update validates and stores the changes of an existing pet.
// An empty birth date keeps the stored one.
func (s *PetService) Update(ctx context.Context, id int64, form dto.PetForm) (*models.Pet, error) {
	current, err := s.petRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pet, err := s.parseForm(ctx, form)
	if err != nil {
		return nil, err
	}
	pet.ID = current.ID
	pet.CreatedAt = current.CreatedAt
	if pet.BirthDate == nil {
		pet.BirthDate = current.BirthDate
	}

	if err := s.petRepo.Update(ctx, pet); err != nil {
		return nil, ownerError(err)
	}
	return pet, nil
}

// Delete removes a pet. The removed pet is returned for messages.
func (s *PetService) Delete(ctx context.Context, id int64) (*models.Pet, error) {
	pet, err := s.petRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.petRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	return pet, nil
}

// ListByOwner returns the pets of a student in export format.
// An unknown student yields an empty list.
func (s *PetService) ListByOwner(ctx context.Context, studentID int64) ([]dto.PetExport, error) {
	pets, err := s.petRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("error listing pets by owner: %w", err)
	}
	return petsToExport(pets), nil
}

// ExportJSON returns every pet in the export format
func (s *PetService) ExportJSON(ctx context.Context) ([]dto.PetExport, error) {
	pets, err := s.petRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error exporting pets: %w", err)
	}
	return petsToExport(pets), nil
}

func petsToExport(pets []models.Pet) []dto.PetExport {
	out := make([]dto.PetExport, 0, len(pets))
	for i := range pets {
		out = append(out, PetToExport(&pets[i]))
	}
	return out
}

// PetToExport converts a pet into its JSON export shape
func PetToExport(p *models.Pet) dto.PetExport {
	return dto.PetExport{
		ID:             p.ID,
		Apelido:        p.Nickname,
		Raca:           p.Breed,
		DataNascimento: helpers.FormatOptional(p.BirthDate, helpers.DateLayout),
		AlunoID:        p.StudentID,
		CreatedAt:      helpers.FormatOptional(&p.CreatedAt, helpers.DateTimeLayout),
		UpdatedAt:      helpers.FormatOptional(&p.UpdatedAt, helpers.DateTimeLayout),
	}
}
