package models

import "time"

// Submission is one graded attempt at a question. Rows are append-only:
// a resubmission creates a new row, and only the bulk regrade operation
// ever rewrites Score.
type Submission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StudentID    uint      `gorm:"not null;index" json:"student_id"`
	QuestionID   uint      `gorm:"not null;index" json:"question_id"`
	SubmittedSQL string    `gorm:"type:text;not null" json:"submitted_sql"`
	Score        int       `gorm:"not null" json:"score"`
	SubmittedAt  time.Time `gorm:"not null" json:"submitted_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Question     Question  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"question"`
	Student      Student   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}
