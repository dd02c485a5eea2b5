package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/yigit/escola/internal/app/models"
)

// StatsRepository runs the aggregate queries behind the dashboard and reports
type StatsRepository struct {
	db Querier
	sb squirrel.StatementBuilderType
}

// NewStatsRepository creates a new StatsRepository
func NewStatsRepository(db Querier) *StatsRepository {
	return &StatsRepository{
		db: db,
		sb: newStatementBuilder(),
	}
}

const ageBandExpr = `CASE
	WHEN age < 18 THEN '` + models.AgeBandUnder18 + `'
	WHEN age BETWEEN 18 AND 25 THEN '` + models.AgeBand18To25 + `'
	WHEN age BETWEEN 26 AND 35 THEN '` + models.AgeBand26To35 + `'
	ELSE '` + models.AgeBandOver35 + `'
END`

func (r *StatsRepository) groupCount(ctx context.Context, q squirrel.SelectBuilder) ([]models.CountByLabel, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build group count query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run group count query: %w", err)
	}
	defer rows.Close()

	counts := []models.CountByLabel{}
	for rows.Next() {
		var c models.CountByLabel
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, fmt.Errorf("error scanning group count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// AverageAge is nil when no student has an age
func (r *StatsRepository) AverageAge(ctx context.Context) (*float64, error) {
	var avg *float64
	if err := r.db.QueryRow(ctx, `SELECT AVG(age)::float8 FROM students`).Scan(&avg); err != nil {
		return nil, fmt.Errorf("failed to compute average age: %w", err)
	}
	return avg, nil
}

func (r *StatsRepository) byCourseQuery() squirrel.SelectBuilder {
	return r.sb.Select("COALESCE(course, '')", "COUNT(*)").From("students").GroupBy("course").OrderBy("course")
}

// StudentsByCourse counts students per course; students without course get an empty label
func (r *StatsRepository) StudentsByCourse(ctx context.Context) ([]models.CountByLabel, error) {
	return r.groupCount(ctx, r.byCourseQuery())
}

// StudentsBySex counts students per sex code
func (r *StatsRepository) StudentsBySex(ctx context.Context) ([]models.CountByLabel, error) {
	return r.groupCount(ctx, r.sb.Select("COALESCE(sex, '')", "COUNT(*)").From("students").GroupBy("sex").OrderBy("sex"))
}

func (r *StatsRepository) byAgeBandQuery() squirrel.SelectBuilder {
	return r.sb.Select(ageBandExpr+" AS band", "COUNT(*)").
		From("students").
		Where("age IS NOT NULL").
		GroupBy("band")
}

// StudentsByAgeBand counts students with a known age per band. Empty bands are absent.
func (r *StatsRepository) StudentsByAgeBand(ctx context.Context) ([]models.CountByLabel, error) {
	return r.groupCount(ctx, r.byAgeBandQuery())
}

func (r *StatsRepository) byBreedQuery(limit uint64) squirrel.SelectBuilder {
	return r.sb.Select("COALESCE(breed, '')", "COUNT(*)").From("pets").GroupBy("breed").OrderBy("breed").Limit(limit)
}

// PetsByBreed counts pets per breed for the first limit breeds in alphabetical order
func (r *StatsRepository) PetsByBreed(ctx context.Context, limit uint64) ([]models.CountByLabel, error) {
	return r.groupCount(ctx, r.byBreedQuery(limit))
}
