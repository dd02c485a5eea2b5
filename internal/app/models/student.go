package models

import (
	"time"
)

// Student defines a student ("aluno") based on the 'students' table
type Student struct {
	ID             int64     `db:"id"`
	EnrollmentCode string    `db:"enrollment_code"`
	Name           string    `db:"name"`
	Course         *string   `db:"course"`
	Age            *int      `db:"age"`
	Sex            *string   `db:"sex"`
	Photo          []byte    `db:"photo"` // only loaded by the photo query
	PhotoFilename  *string   `db:"photo_filename"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`

	Pets []Pet `db:"-"` // relation, filled by detail and master-detail reads
}

// HasPhoto reports whether a photo is stored for the student
func (s *Student) HasPhoto() bool {
	return s.PhotoFilename != nil && *s.PhotoFilename != ""
}

// StudentPhoto is the binary photo of a student
type StudentPhoto struct {
	Data        []byte
	Filename    string
	ContentType string
}
