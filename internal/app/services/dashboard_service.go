package services

import (
	"context"
	"fmt"
	"math"

	"github.com/yigit/escola/internal/app/models"
	"github.com/yigit/escola/internal/app/models/dto"
	"github.com/yigit/escola/internal/app/repositories"
)

const (
	recentStudentsLimit = 5
	breedLimit          = 10
)

// DashboardService computes the dashboard and statistics numbers
type DashboardService struct {
	studentRepo repositories.IStudentRepository
	petRepo     repositories.IPetRepository
	statsRepo   repositories.IStatsRepository
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	studentRepo repositories.IStudentRepository,
	petRepo repositories.IPetRepository,
	statsRepo repositories.IStatsRepository,
) *DashboardService {
	return &DashboardService{
		studentRepo: studentRepo,
		petRepo:     petRepo,
		statsRepo:   statsRepo,
	}
}

// RoundAverage rounds to one decimal; nil means no ages and yields 0
func RoundAverage(avg *float64) float64 {
	if avg == nil {
		return 0
	}
	return math.Round(*avg*10) / 10
}

// Totals returns the student and pet counts and the average age
func (s *DashboardService) Totals(ctx context.Context) (models.Totals, error) {
	var totals models.Totals
	var err error

	if totals.Students, err = s.studentRepo.Count(ctx); err != nil {
		return totals, fmt.Errorf("error counting students: %w", err)
	}
	if totals.Pets, err = s.petRepo.Count(ctx); err != nil {
		return totals, fmt.Errorf("error counting pets: %w", err)
	}

	avg, err := s.statsRepo.AverageAge(ctx)
	if err != nil {
		return totals, fmt.Errorf("error computing average age: %w", err)
	}
	totals.AverageAge = RoundAverage(avg)
	return totals, nil
}

// Dashboard gathers everything shown on the dashboard page
func (s *DashboardService) Dashboard(ctx context.Context) (*dto.Dashboard, error) {
	totals, err := s.Totals(ctx)
	if err != nil {
		return nil, err
	}

	byCourse, err := s.statsRepo.StudentsByCourse(ctx)
	if err != nil {
		return nil, fmt.Errorf("error grouping students by course: %w", err)
	}
	bySex, err := s.statsRepo.StudentsBySex(ctx)
	if err != nil {
		return nil, fmt.Errorf("error grouping students by sex: %w", err)
	}
	recent, err := s.studentRepo.Recent(ctx, recentStudentsLimit)
	if err != nil {
		return nil, fmt.Errorf("error loading recent students: %w", err)
	}

	return &dto.Dashboard{
		Totals:         totals,
		ByCourse:       labelCourses(byCourse),
		BySex:          labelSexes(bySex),
		RecentStudents: recent,
	}, nil
}

// Statistics gathers the grouped counts of the statistics page
func (s *DashboardService) Statistics(ctx context.Context) (*dto.Statistics, error) {
	byCourse, err := s.statsRepo.StudentsByCourse(ctx)
	if err != nil {
		return nil, fmt.Errorf("error grouping students by course: %w", err)
	}
	bySex, err := s.statsRepo.StudentsBySex(ctx)
	if err != nil {
		return nil, fmt.Errorf("error grouping students by sex: %w", err)
	}
	byAge, err := s.statsRepo.StudentsByAgeBand(ctx)
	if err != nil {
		return nil, fmt.Errorf("error grouping students by age: %w", err)
	}
	byBreed, err := s.statsRepo.PetsByBreed(ctx, breedLimit)
	if err != nil {
		return nil, fmt.Errorf("error grouping pets by breed: %w", err)
	}

	return &dto.Statistics{
		ByCourse: labelCourses(byCourse),
		BySex:    labelSexes(bySex),
		ByAge:    FillAgeBands(byAge),
		ByBreed:  labelEmpty(byBreed, "Sem raça informada"),
	}, nil
}

// FillAgeBands returns every band in display order, with zero for bands missing from counts
func FillAgeBands(counts []models.CountByLabel) []models.CountByLabel {
	byBand := make(map[string]int64, len(counts))
	for _, c := range counts {
		byBand[c.Label] += c.Count
	}

	out := make([]models.CountByLabel, 0, len(models.AgeBands))
	for _, band := range models.AgeBands {
		out = append(out, models.CountByLabel{Label: band, Count: byBand[band]})
	}
	return out
}

func labelEmpty(counts []models.CountByLabel, empty string) []models.CountByLabel {
	out := make([]models.CountByLabel, len(counts))
	for i, c := range counts {
		if c.Label == "" {
			c.Label = empty
		}
		out[i] = c
	}
	return out
}

func labelCourses(counts []models.CountByLabel) []models.CountByLabel {
	return labelEmpty(counts, "Não informado")
}

func labelSexes(counts []models.CountByLabel) []models.CountByLabel {
	out := labelEmpty(counts, "Não informado")
	for i := range out {
		if name := models.SexLabel(out[i].Label); name != "" {
			out[i].Label = name
		}
	}
	return out
}
