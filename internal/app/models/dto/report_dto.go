package dto

import (
	"github.com/yigit/escola/internal/app/models"
)

// StudentPage is one page of the student list
type StudentPage struct {
	Students   []models.Student
	Search     string
	Pagination PaginationInfo
}

// PetPage is one page of the pet list
type PetPage struct {
	Pets       []models.Pet
	Search     string
	Pagination PaginationInfo
}

// Dashboard holds everything shown on the dashboard
type Dashboard struct {
	Totals         models.Totals
	ByCourse       []models.CountByLabel
	BySex          []models.CountByLabel
	RecentStudents []models.Student
}

// Statistics holds the grouped counts of the statistics page
type Statistics struct {
	ByCourse []models.CountByLabel
	BySex    []models.CountByLabel
	ByAge    []models.CountByLabel
	ByBreed  []models.CountByLabel
}
