package services

import (
	"strings"
)

// Services defined in this package:
// - AuthService: login, registration and password changes
// - StudentService: student CRUD, photos and JSON export
// - PetService: pet CRUD and JSON export
// - DashboardService: headline numbers and grouped counts
// - ReportService: PDF and master-detail reports

// optionalString trims s and returns nil when nothing is left
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
