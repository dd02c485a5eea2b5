package models

import (
	"time"
)

// Pet defines a pet based on the 'pets' table
type Pet struct {
	ID        int64      `db:"id"`
	Nickname  string     `db:"nickname"`
	Breed     *string    `db:"breed"`
	BirthDate *time.Time `db:"birth_date"`
	StudentID int64      `db:"student_id"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`

	OwnerName string `db:"owner_name"` // joined from students on list reads
}
