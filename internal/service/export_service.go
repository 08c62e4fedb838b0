package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/sqlgrader-api/internal/repository"
	"github.com/noah-isme/sqlgrader-api/internal/scoring"
)

// ExportFilename is the attachment name served for CSV downloads.
const ExportFilename = "submissions.csv"

var exportHeader = []string{"Prompt", "Due Date", "Submitted SQL", "Score", "Submitted At", "Status", "Timing"}

// ExportService renders a student's submission history as CSV.
type ExportService interface {
	ExportCSV(ctx context.Context, studentID uint) ([]byte, error)
}

type exportService struct {
	submissions repository.SubmissionRepository
	policy      scoring.Policy
	logger      zerolog.Logger
}

// NewExportService constructs the CSV export service.
func NewExportService(submissions repository.SubmissionRepository, policy scoring.Policy, logger zerolog.Logger) ExportService {
	return &exportService{
		submissions: submissions,
		policy:      policy,
		logger:      logger.With().Str("component", "export_service").Logger(),
	}
}

func (s *exportService) ExportCSV(ctx context.Context, studentID uint) ([]byte, error) {
	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	buffer := &bytes.Buffer{}
	writer := csv.NewWriter(buffer)

	if err := writer.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, submission := range submissions {
		late := s.policy.IsLate(submission.SubmittedAt, submission.Question.DueDate)
		record := []string{
			submission.Question.Prompt,
			submission.Question.DueDate.Format(time.DateOnly),
			submission.SubmittedSQL,
			strconv.Itoa(submission.Score),
			submission.SubmittedAt.Format(time.DateTime),
			deriveStatus(s.policy, submission.Score, submission.Question.MaxScore, late),
			deriveTiming(late),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	s.logger.Info().Uint("student_id", studentID).Int("rows", len(submissions)).Msg("submissions exported")

	return buffer.Bytes(), nil
}
