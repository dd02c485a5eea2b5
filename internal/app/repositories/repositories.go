package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/yigit/escola/internal/app/models"
)

// Querier is the part of pgxpool.Pool the repositories use
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// IAccountRepository defines the account operations used by authentication
type IAccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// IStudentRepository defines the student operations
type IStudentRepository interface {
	List(ctx context.Context, search string, offset, limit uint64) ([]models.Student, int64, error)
	ListAll(ctx context.Context) ([]models.Student, error)
	Recent(ctx context.Context, limit uint64) ([]models.Student, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetPhoto(ctx context.Context, id int64) (*models.StudentPhoto, error)
	Exists(ctx context.Context, id int64) (bool, error)
	EnrollmentCodeTaken(ctx context.Context, code string, excludeID int64) (bool, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student, replacePhoto bool) error
	// Delete removes the student and its pets in one transaction
	Delete(ctx context.Context, id int64) error
}

// IPetRepository defines the pet operations
type IPetRepository interface {
	List(ctx context.Context, search string, offset, limit uint64) ([]models.Pet, int64, error)
	ListAll(ctx context.Context) ([]models.Pet, error)
	ListByStudent(ctx context.Context, studentID int64) ([]models.Pet, error)
	ListByStudents(ctx context.Context, studentIDs []int64) ([]models.Pet, error)
	GetByID(ctx context.Context, id int64) (*models.Pet, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, pet *models.Pet) error
	Update(ctx context.Context, pet *models.Pet) error
	Delete(ctx context.Context, id int64) error
}

// IStatsRepository defines the aggregate queries of the dashboard and reports
type IStatsRepository interface {
	AverageAge(ctx context.Context) (*float64, error)
	StudentsByCourse(ctx context.Context) ([]models.CountByLabel, error)
	StudentsBySex(ctx context.Context) ([]models.CountByLabel, error)
	StudentsByAgeBand(ctx context.Context) ([]models.CountByLabel, error)
	PetsByBreed(ctx context.Context, limit uint64) ([]models.CountByLabel, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	AccountRepository *AccountRepository
	StudentRepository *StudentRepository
	PetRepository     *PetRepository
	StatsRepository   *StatsRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db Querier) *Repositories {
	return &Repositories{
		AccountRepository: NewAccountRepository(db),
		StudentRepository: NewStudentRepository(db),
		PetRepository:     NewPetRepository(db),
		StatsRepository:   NewStatsRepository(db),
	}
}

func newStatementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user input into an ILIKE substring pattern
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(search)) + "%"
}
