package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/yigit/escola/internal/app/models"
	"github.com/yigit/escola/internal/app/repositories"
	"github.com/yigit/escola/internal/pkg/report"
)

// ReportService builds the downloadable and master-detail reports
type ReportService struct {
	studentRepo repositories.IStudentRepository
	petRepo     repositories.IPetRepository
	now         func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(studentRepo repositories.IStudentRepository, petRepo repositories.IPetRepository) *ReportService {
	return &ReportService{
		studentRepo: studentRepo,
		petRepo:     petRepo,
		now:         time.Now,
	}
}

// StudentsPDF writes the student table to w and returns the download filename
func (s *ReportService) StudentsPDF(ctx context.Context, w io.Writer) (string, error) {
	students, err := s.studentRepo.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("error loading students for report: %w", err)
	}

	rows := make([]report.StudentRow, 0, len(students))
	for _, st := range students {
		row := report.StudentRow{
			EnrollmentCode: st.EnrollmentCode,
			Name:           st.Name,
			Age:            st.Age,
		}
		if st.Course != nil {
			row.Course = *st.Course
		}
		if st.Sex != nil {
			row.Sex = *st.Sex
		}
		rows = append(rows, row)
	}

	generatedAt := s.now()
	if err := report.WriteStudentsPDF(w, rows, generatedAt); err != nil {
		return "", err
	}
	return report.StudentsFilename(generatedAt), nil
}

// MasterDetail returns one student (studentID > 0) or all students by name, each with its pets
func (s *ReportService) MasterDetail(ctx context.Context, studentID int64) ([]models.Student, error) {
	var students []models.Student
	if studentID > 0 {
		st, err := s.studentRepo.GetByID(ctx, studentID)
		if err != nil {
			return nil, err
		}
		students = []models.Student{*st}
	} else {
		all, err := s.studentRepo.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("error loading students: %w", err)
		}
		students = all
	}

	ids := make([]int64, len(students))
	for i := range students {
		ids[i] = students[i].ID
	}
	pets, err := s.petRepo.ListByStudents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("error loading pets: %w", err)
	}

	byOwner := make(map[int64][]models.Pet, len(students))
	for _, p := range pets {
		byOwner[p.StudentID] = append(byOwner[p.StudentID], p)
	}
	for i := range students {
		students[i].Pets = byOwner[students[i].ID]
	}
	return students, nil
}
