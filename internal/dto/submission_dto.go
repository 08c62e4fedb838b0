package dto

import (
	"time"

	"github.com/noah-isme/sqlgrader-api/internal/models"
)

// SubmissionCreateRequest submits a SQL answer to a question.
type SubmissionCreateRequest struct {
	QuestionID uint   `json:"question_id" validate:"required,gt=0"`
	SQL        string `json:"sql" validate:"required,min=1"`
}

// ResubmitRequest submits a new attempt based on an existing submission.
type ResubmitRequest struct {
	SQL string `json:"sql" validate:"required,min=1"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID           uint         `json:"id"`
	QuestionID   uint         `json:"question_id"`
	StudentID    uint         `json:"student_id"`
	SubmittedSQL string       `json:"submitted_sql"`
	Score        int          `json:"score"`
	SubmittedAt  time.Time    `json:"submitted_at"`
	Question     QuestionLite `json:"question"`
}

// Submission outcome labels shared by history and CSV export.
const (
	StatusCorrect     = "Correct"
	StatusCorrectLate = "Correct (Late)"
	StatusWrong       = "Wrong"
	TimingOnTime      = "On Time"
	TimingLate        = "Late"
)

// HistoryEntryResponse is one row of a student's full submission history.
type HistoryEntryResponse struct {
	SubmissionID uint      `json:"submission_id"`
	Prompt       string    `json:"prompt"`
	DueDate      time.Time `json:"due_date"`
	MaxScore     int       `json:"max_score"`
	SubmittedSQL string    `json:"submitted_sql"`
	Score        int       `json:"score"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Status       string    `json:"status"`
	Timing       string    `json:"timing"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:           model.ID,
		QuestionID:   model.QuestionID,
		StudentID:    model.StudentID,
		SubmittedSQL: model.SubmittedSQL,
		Score:        model.Score,
		SubmittedAt:  model.SubmittedAt,
	}

	if model.Question.ID != 0 {
		response.Question = QuestionLite{
			ID:       model.Question.ID,
			Prompt:   model.Question.Prompt,
			DueDate:  model.Question.DueDate,
			MaxScore: model.Question.MaxScore,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
