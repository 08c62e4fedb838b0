package models

import "time"

// Role values carried by the JWT and checked by the auth middleware.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Student represents a registered account that can submit answers.
type Student struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;default:student" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin reports whether the student may run administrative operations.
func (s Student) IsAdmin() bool {
	return s.Role == RoleAdmin
}
