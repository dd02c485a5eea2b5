package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/escola/internal/app/models"
	"github.com/yigit/escola/internal/pkg/apperrors"
	"github.com/yigit/escola/internal/pkg/dberrors"
	"github.com/yigit/escola/internal/pkg/logger"
)

// PetRepository handles pet database operations
type PetRepository struct {
	db Querier
	sb squirrel.StatementBuilderType
}

// NewPetRepository creates a new PetRepository
func NewPetRepository(db Querier) *PetRepository {
	return &PetRepository{
		db: db,
		sb: newStatementBuilder(),
	}
}

var petColumns = []string{
	"p.id", "p.nickname", "p.breed", "p.birth_date", "p.student_id", "p.created_at", "p.updated_at",
	"s.name AS owner_name",
}

func (r *PetRepository) selectPets() squirrel.SelectBuilder {
	return r.sb.Select(petColumns...).
		From("pets p").
		Join("students s ON s.id = p.student_id")
}

func scanPet(row pgx.Row) (models.Pet, error) {
	var p models.Pet
	err := row.Scan(&p.ID, &p.Nickname, &p.Breed, &p.BirthDate, &p.StudentID,
		&p.CreatedAt, &p.UpdatedAt, &p.OwnerName)
	return p, err
}

func (r *PetRepository) queryPets(ctx context.Context, q squirrel.SelectBuilder) ([]models.Pet, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build pets query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying pets")
		return nil, fmt.Errorf("failed to query pets: %w", err)
	}
	defer rows.Close()

	pets := []models.Pet{}
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning pet row: %w", err)
		}
		pets = append(pets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pet rows: %w", err)
	}
	return pets, nil
}

// petSearchFilter matches nickname, breed or the owner's name
func petSearchFilter(search string) squirrel.Sqlizer {
	if search == "" {
		return nil
	}
	pattern := containsPattern(search)
	return squirrel.Or{
		squirrel.ILike{"p.nickname": pattern},
		squirrel.ILike{"p.breed": pattern},
		squirrel.ILike{"s.name": pattern},
	}
}

func (r *PetRepository) listQuery(search string, offset, limit uint64) squirrel.SelectBuilder {
	q := r.selectPets()
	if filter := petSearchFilter(search); filter != nil {
		q = q.Where(filter)
	}
	return q.OrderBy("p.nickname ASC", "p.id ASC").Limit(limit).Offset(offset)
}

func (r *PetRepository) countQuery(search string) squirrel.SelectBuilder {
	q := r.sb.Select("COUNT(*)").From("pets p").Join("students s ON s.id = p.student_id")
	if filter := petSearchFilter(search); filter != nil {
		q = q.Where(filter)
	}
	return q
}

// List returns one page of pets ordered by nickname and the total number of matches
func (r *PetRepository) List(ctx context.Context, search string, offset, limit uint64) ([]models.Pet, int64, error) {
	countSQL, countArgs, err := r.countQuery(search).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count pets query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pets: %w", err)
	}
	if total == 0 {
		return []models.Pet{}, 0, nil
	}

	pets, err := r.queryPets(ctx, r.listQuery(search, offset, limit))
	if err != nil {
		return nil, 0, err
	}
	return pets, total, nil
}

// ListAll returns every pet ordered by id
func (r *PetRepository) ListAll(ctx context.Context) ([]models.Pet, error) {
	return r.queryPets(ctx, r.selectPets().OrderBy("p.id ASC"))
}

// ListByStudent returns the pets of one student
func (r *PetRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Pet, error) {
	return r.queryPets(ctx, r.selectPets().Where(squirrel.Eq{"p.student_id": studentID}).OrderBy("p.nickname ASC", "p.id ASC"))
}

// ListByStudents returns the pets of several students in one query
func (r *PetRepository) ListByStudents(ctx context.Context, studentIDs []int64) ([]models.Pet, error) {
	if len(studentIDs) == 0 {
		return []models.Pet{}, nil
	}
	// squirrel.Eq with a slice renders IN (...)
	return r.queryPets(ctx, r.selectPets().Where(squirrel.Eq{"p.student_id": studentIDs}).OrderBy("p.nickname ASC", "p.id ASC"))
}

// GetByID retrieves a pet by ID
func (r *PetRepository) GetByID(ctx context.Context, id int64) (*models.Pet, error) {
	sql, args, err := r.selectPets().Where(squirrel.Eq{"p.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get pet query: %w", err)
	}

	p, err := scanPet(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrPetNotFound
		}
		return nil, fmt.Errorf("error retrieving pet: %w", err)
	}
	return &p, nil
}

// Count returns the number of pets
func (r *PetRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM pets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pets: %w", err)
	}
	return n, nil
}

// Create inserts the pet and fills ID and timestamps
func (r *PetRepository) Create(ctx context.Context, pet *models.Pet) error {
	sql, args, err := r.sb.Insert("pets").
		Columns("nickname", "breed", "birth_date", "student_id").
		Values(pet.Nickname, pet.Breed, pet.BirthDate, pet.StudentID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create pet query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&pet.ID, &pet.CreatedAt, &pet.UpdatedAt)
	if err != nil {
		// owner deleted between the existence check and the insert
		if dberrors.IsForeignKeyViolation(err, "pets_student_id_fkey") {
			return apperrors.ErrOwnerNotFound
		}
		logger.Error().Err(err).Int64("studentID", pet.StudentID).Msg("Error executing create pet query")
		return fmt.Errorf("error creating pet: %w", err)
	}

	logger.Info().Int64("petID", pet.ID).Int64("studentID", pet.StudentID).Msg("Pet created")
	return nil
}

// Update stores the pet fields
func (r *PetRepository) Update(ctx context.Context, pet *models.Pet) error {
	sql, args, err := r.sb.Update("pets").
		Set("nickname", pet.Nickname).
		Set("breed", pet.Breed).
		Set("birth_date", pet.BirthDate).
		Set("student_id", pet.StudentID).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": pet.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update pet query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&pet.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return apperrors.ErrPetNotFound
		case dberrors.IsForeignKeyViolation(err, "pets_student_id_fkey"):
			return apperrors.ErrOwnerNotFound
		}
		return fmt.Errorf("error updating pet: %w", err)
	}
	return nil
}

// Delete removes a pet
func (r *PetRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting pet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrPetNotFound
	}

	logger.Info().Int64("petID", id).Msg("Pet deleted")
	return nil
}
