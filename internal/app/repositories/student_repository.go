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

// StudentRepository handles student database operations
type StudentRepository struct {
	db Querier
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db Querier) *StudentRepository {
	return &StudentRepository{
		db: db,
		sb: newStatementBuilder(),
	}
}

// photo bytes are left out; only GetPhoto reads them
var studentColumns = []string{
	"id", "enrollment_code", "name", "course", "age", "sex", "photo_filename", "created_at", "updated_at",
}

func scanStudent(row pgx.Row) (models.Student, error) {
	var s models.Student
	err := row.Scan(&s.ID, &s.EnrollmentCode, &s.Name, &s.Course, &s.Age, &s.Sex,
		&s.PhotoFilename, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func collectStudents(rows pgx.Rows) ([]models.Student, error) {
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}
	return students, nil
}

// searchFilter matches name, enrollment code or course case-insensitively
func searchFilter(search string) squirrel.Sqlizer {
	if search == "" {
		return nil
	}
	pattern := containsPattern(search)
	return squirrel.Or{
		squirrel.ILike{"name": pattern},
		squirrel.ILike{"enrollment_code": pattern},
		squirrel.ILike{"course": pattern},
	}
}

func (r *StudentRepository) listQuery(search string, offset, limit uint64) squirrel.SelectBuilder {
	q := r.sb.Select(studentColumns...).From("students")
	if filter := searchFilter(search); filter != nil {
		q = q.Where(filter)
	}
	return q.OrderBy("name ASC", "id ASC").Limit(limit).Offset(offset)
}

func (r *StudentRepository) countQuery(search string) squirrel.SelectBuilder {
	q := r.sb.Select("COUNT(*)").From("students")
	if filter := searchFilter(search); filter != nil {
		q = q.Where(filter)
	}
	return q
}

// List returns one page of students ordered by name and the total number of matches
func (r *StudentRepository) List(ctx context.Context, search string, offset, limit uint64) ([]models.Student, int64, error) {
	countSQL, countArgs, err := r.countQuery(search).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count students query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Str("search", search).Msg("Error counting students")
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}
	if total == 0 {
		return []models.Student{}, 0, nil
	}

	sql, args, err := r.listQuery(search, offset, limit).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("search", search).Msg("Error listing students")
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}
	students, err := collectStudents(rows)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// ListAll returns every student ordered by name
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).From("students").OrderBy("name ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list all students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return collectStudents(rows)
}

// Recent returns the most recently created students
func (r *StudentRepository) Recent(ctx context.Context, limit uint64) ([]models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).From("students").
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build recent students query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent students: %w", err)
	}
	return collectStudents(rows)
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).From("students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	s, err := scanStudent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error retrieving student")
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return &s, nil
}

// GetPhoto retrieves the stored photo; Data is nil when the student has none
func (r *StudentRepository) GetPhoto(ctx context.Context, id int64) (*models.StudentPhoto, error) {
	var (
		data     []byte
		filename *string
	)
	err := r.db.QueryRow(ctx, `SELECT photo, photo_filename FROM students WHERE id = $1`, id).Scan(&data, &filename)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student photo: %w", err)
	}

	photo := &models.StudentPhoto{Data: data}
	if filename != nil {
		photo.Filename = *filename
	}
	return photo, nil
}

// Exists checks whether a student with the id exists
func (r *StudentRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking student existence: %w", err)
	}
	return exists, nil
}

func (r *StudentRepository) codeTakenQuery(code string, excludeID int64) squirrel.SelectBuilder {
	where := squirrel.And{squirrel.Eq{"enrollment_code": code}}
	if excludeID > 0 {
		where = append(where, squirrel.NotEq{"id": excludeID})
	}
	return r.sb.Select("1").From("students").Where(where).Prefix("SELECT EXISTS (").Suffix(")")
}

// EnrollmentCodeTaken checks if another student already uses the code
func (r *StudentRepository) EnrollmentCodeTaken(ctx context.Context, code string, excludeID int64) (bool, error) {
	sql, args, err := r.codeTakenQuery(code, excludeID).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build enrollment code query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking enrollment code: %w", err)
	}
	return exists, nil
}

// Count returns the number of students
func (r *StudentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count students: %w", err)
	}
	return n, nil
}

// Create inserts the student and fills ID and timestamps
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	sql, args, err := r.sb.Insert("students").
		Columns("enrollment_code", "name", "course", "age", "sex", "photo", "photo_filename").
		Values(student.EnrollmentCode, student.Name, student.Course, student.Age, student.Sex,
			student.Photo, student.PhotoFilename).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "students_enrollment_code_key") {
			logger.Warn().Str("enrollmentCode", student.EnrollmentCode).Msg("Attempted to create student with duplicate enrollment code")
			return apperrors.ErrDuplicateEnrollment
		}
		logger.Error().Err(err).Str("enrollmentCode", student.EnrollmentCode).Msg("Error executing create student query")
		return fmt.Errorf("error creating student: %w", err)
	}

	logger.Info().Int64("studentID", student.ID).Str("enrollmentCode", student.EnrollmentCode).Msg("Student created")
	return nil
}

func (r *StudentRepository) updateQuery(student *models.Student, replacePhoto bool) squirrel.UpdateBuilder {
	q := r.sb.Update("students").
		Set("enrollment_code", student.EnrollmentCode).
		Set("name", student.Name).
		Set("course", student.Course).
		Set("age", student.Age).
		Set("sex", student.Sex).
		Set("updated_at", squirrel.Expr("now()"))
	if replacePhoto {
		q = q.Set("photo", student.Photo).Set("photo_filename", student.PhotoFilename)
	}
	return q.Where(squirrel.Eq{"id": student.ID}).Suffix("RETURNING updated_at")
}

// Update stores the student fields; the photo columns change only when replacePhoto is set
func (r *StudentRepository) Update(ctx context.Context, student *models.Student, replacePhoto bool) error {
	sql, args, err := r.updateQuery(student, replacePhoto).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&student.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return apperrors.ErrStudentNotFound
		case dberrors.IsDuplicateConstraintError(err, "students_enrollment_code_key"):
			return apperrors.ErrDuplicateEnrollment
		}
		logger.Error().Err(err).Int64("studentID", student.ID).Msg("Error executing update student query")
		return fmt.Errorf("error updating student: %w", err)
	}
	return nil
}

// Delete removes the student's pets and then the student in one transaction
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin delete student transaction: %w", err)
	}

	removedPets, err := deleteStudentWithPets(ctx, tx, id)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			logger.Warn().Err(rbErr).Int64("studentID", id).Msg("Error rolling back delete student transaction")
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete student transaction: %w", err)
	}

	logger.Info().Int64("studentID", id).Int64("pets", removedPets).Msg("Student deleted")
	return nil
}

func deleteStudentWithPets(ctx context.Context, tx pgx.Tx, id int64) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM pets WHERE student_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("error deleting student pets: %w", err)
	}
	removedPets := tag.RowsAffected()

	tag, err = tx.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("error deleting student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, apperrors.ErrStudentNotFound
	}
	return removedPets, nil
}
