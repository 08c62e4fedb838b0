package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/sqlgrader-api/internal/dto"
	"github.com/noah-isme/sqlgrader-api/internal/models"
	"github.com/noah-isme/sqlgrader-api/internal/repository"
	"github.com/noah-isme/sqlgrader-api/internal/scoring"
	"github.com/noah-isme/sqlgrader-api/pkg/grader"
)

// ErrQuestionNotFound indicates the referenced question does not exist.
var ErrQuestionNotFound = errors.New("question not found")

// ErrSubmissionNotFound indicates a submission could not be found.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrNotSubmissionOwner indicates the caller does not own the submission.
var ErrNotSubmissionOwner = errors.New("submission belongs to another student")

// ErrGradingUnavailable indicates the grading oracle failed; nothing was recorded.
var ErrGradingUnavailable = errors.New("grading oracle unavailable")

// LeaderboardInvalidator busts cached standings after a score-changing write.
type LeaderboardInvalidator interface {
	Invalidate(ctx context.Context) error
}

// SubmissionService orchestrates submit and resubmit flows plus the
// student-facing read views.
type SubmissionService interface {
	Submit(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Resubmit(ctx context.Context, studentID, submissionID uint, payload dto.ResubmitRequest) (dto.SubmissionResponse, error)
	List(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error)
	History(ctx context.Context, studentID uint) ([]dto.HistoryEntryResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	questions   repository.QuestionRepository
	oracle      grader.Grader
	policy      scoring.Policy
	leaderboard LeaderboardInvalidator
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(submissions repository.SubmissionRepository, questions repository.QuestionRepository, oracle grader.Grader, policy scoring.Policy, leaderboard LeaderboardInvalidator, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		questions:   questions,
		oracle:      oracle,
		policy:      policy,
		leaderboard: leaderboard,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	question, err := s.questions.GetByID(ctx, payload.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrQuestionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return s.gradeAndRecord(ctx, studentID, question, payload.SQL)
}

func (s *submissionService) Resubmit(ctx context.Context, studentID, submissionID uint, payload dto.ResubmitRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	previous, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if previous.StudentID != studentID {
		return dto.SubmissionResponse{}, ErrNotSubmissionOwner
	}

	question, err := s.questions.GetByID(ctx, previous.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrQuestionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return s.gradeAndRecord(ctx, studentID, question, payload.SQL)
}

// gradeAndRecord grades first and persists second: a grading failure leaves
// no row behind, and a score is never recorded without a raw grade.
func (s *submissionService) gradeAndRecord(ctx context.Context, studentID uint, question models.Question, sql string) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/sqlgrader-api/internal/service/submission")
	ctx, span := tracer.Start(ctx, "submission.grade")
	span.SetAttributes(
		attribute.Int64("submission.student_id", int64(studentID)),
		attribute.Int64("submission.question_id", int64(question.ID)),
	)
	defer span.End()

	raw, err := s.oracle.Grade(ctx, sql, question.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "oracle_failed")
		return dto.SubmissionResponse{}, fmt.Errorf("%w: %v", ErrGradingUnavailable, err)
	}

	submittedAt := s.now()
	score := s.policy.Score(raw, submittedAt, question.DueDate)

	submission := models.Submission{
		StudentID:    studentID,
		QuestionID:   question.ID,
		SubmittedSQL: sql,
		Score:        score,
		SubmittedAt:  submittedAt,
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist_failed")
		return dto.SubmissionResponse{}, err
	}

	if s.leaderboard != nil {
		if err := s.leaderboard.Invalidate(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
		}
	}

	span.SetAttributes(attribute.Int("submission.score", score))
	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("student_id", studentID).
		Int("score", score).
		Msg("submission recorded")

	submission.Question = question

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, studentID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) History(ctx context.Context, studentID uint) ([]dto.HistoryEntryResponse, error) {
	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.HistoryEntryResponse, 0, len(submissions))
	for _, submission := range submissions {
		late := s.policy.IsLate(submission.SubmittedAt, submission.Question.DueDate)
		entries = append(entries, dto.HistoryEntryResponse{
			SubmissionID: submission.ID,
			Prompt:       submission.Question.Prompt,
			DueDate:      submission.Question.DueDate,
			MaxScore:     submission.Question.MaxScore,
			SubmittedSQL: submission.SubmittedSQL,
			Score:        submission.Score,
			SubmittedAt:  submission.SubmittedAt,
			Status:       deriveStatus(s.policy, submission.Score, submission.Question.MaxScore, late),
			Timing:       deriveTiming(late),
		})
	}

	return entries, nil
}

// deriveStatus compares the stored score against what a fully correct answer
// would have recorded under the same timing, so it stays accurate for any
// configured penalty multiplier.
func deriveStatus(policy scoring.Policy, score, maxScore int, late bool) string {
	if score == policy.FullCreditScore(maxScore, late) {
		if late {
			return dto.StatusCorrectLate
		}
		return dto.StatusCorrect
	}
	return dto.StatusWrong
}

func deriveTiming(late bool) string {
	if late {
		return dto.TimingLate
	}
	return dto.TimingOnTime
}
