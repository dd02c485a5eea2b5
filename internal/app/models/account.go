package models

import (
	"time"
)

// Account defines an administrator login based on the 'accounts' table
type Account struct {
	ID           int64      `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     string     `json:"fullName" db:"full_name"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}

// DisplayName is the full name, or the username when none was given
func (a *Account) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Username
}
