package models

import "time"

// Question is a SQL exercise students answer. Questions are read-only in
// normal operation; they enter the system through the admin seed endpoint.
type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Prompt    string    `gorm:"type:text;not null" json:"prompt"`
	DueDate   time.Time `gorm:"not null" json:"due_date"`
	MaxScore  int       `gorm:"not null;default:100" json:"max_score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
