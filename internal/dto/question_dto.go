package dto

import (
	"time"

	"github.com/noah-isme/sqlgrader-api/internal/models"
)

// QuestionResponse is returned when listing or viewing questions. Prompt is
// sanitized HTML.
type QuestionResponse struct {
	ID       uint      `json:"id"`
	Prompt   string    `json:"prompt"`
	DueDate  time.Time `json:"due_date"`
	MaxScore int       `json:"max_score"`
}

// QuestionLite summarizes a question inside submission responses.
type QuestionLite struct {
	ID       uint      `json:"id"`
	Prompt   string    `json:"prompt"`
	DueDate  time.Time `json:"due_date"`
	MaxScore int       `json:"max_score"`
}

// QuestionSeed is one entry of the admin seed payload. The payload is
// validated against a JSON schema before these are decoded.
type QuestionSeed struct {
	Prompt   string    `json:"prompt"`
	DueDate  time.Time `json:"due_date"`
	MaxScore int       `json:"max_score"`
}

// SeedResponse reports how many questions a seed call inserted.
type SeedResponse struct {
	Inserted int64 `json:"inserted"`
}

// NewQuestionResponse converts a Question model into a DTO using the
// already-sanitized prompt.
func NewQuestionResponse(model models.Question, sanitizedPrompt string) QuestionResponse {
	return QuestionResponse{
		ID:       model.ID,
		Prompt:   sanitizedPrompt,
		DueDate:  model.DueDate,
		MaxScore: model.MaxScore,
	}
}
