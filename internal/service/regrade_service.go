package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/sqlgrader-api/internal/dto"
	"github.com/noah-isme/sqlgrader-api/internal/models"
	"github.com/noah-isme/sqlgrader-api/internal/repository"
	"github.com/noah-isme/sqlgrader-api/internal/scoring"
	"github.com/noah-isme/sqlgrader-api/pkg/grader"
)

// RegradeService recomputes every stored submission score against the
// current question due dates.
type RegradeService interface {
	RegradeAll(ctx context.Context, actor Actor) (dto.RegradeResponse, error)
}

type regradeService struct {
	submissions repository.SubmissionRepository
	runs        repository.RegradeRunRepository
	oracle      grader.Grader
	policy      scoring.Policy
	leaderboard LeaderboardInvalidator
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	now         func() time.Time
}

// NewRegradeService constructs the bulk regrade service. The NATS connection
// is optional; when present a summary event is published after each run.
func NewRegradeService(submissions repository.SubmissionRepository, runs repository.RegradeRunRepository, oracle grader.Grader, policy scoring.Policy, leaderboard LeaderboardInvalidator, natsConn *nats.Conn, natsSubject string, logger zerolog.Logger) RegradeService {
	return &regradeService{
		submissions: submissions,
		runs:        runs,
		oracle:      oracle,
		policy:      policy,
		leaderboard: leaderboard,
		nats:        natsConn,
		natsSubject: natsSubject,
		logger:      logger.With().Str("component", "regrade_service").Logger(),
		now:         time.Now,
	}
}

type regradeEvent struct {
	RunID       uint      `json:"run_id"`
	ActorID     uint      `json:"actor_id"`
	RowsUpdated int       `json:"rows_updated"`
	RowsFailed  int       `json:"rows_failed"`
	FinishedAt  time.Time `json:"finished_at"`
}

// RegradeAll regrades every submission row, committing per row and
// continuing past failures. Repeated runs over unchanged inputs are
// idempotent: scores are overwritten with values equal to what is stored.
func (s *regradeService) RegradeAll(ctx context.Context, actor Actor) (dto.RegradeResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/sqlgrader-api/internal/service/regrade")
	ctx, span := tracer.Start(ctx, "regrade.all")
	span.SetAttributes(attribute.Int64("regrade.actor_id", int64(actor.ID)))
	defer span.End()

	startedAt := s.now()

	submissions, err := s.submissions.ListAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_failed")
		return dto.RegradeResponse{}, err
	}

	var updated int
	var failures []dto.RegradeFailure
	for _, submission := range submissions {
		if err := s.regradeRow(ctx, submission); err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", submission.ID).Msg("regrade row failed")
			failures = append(failures, dto.RegradeFailure{SubmissionID: submission.ID, Reason: err.Error()})
			continue
		}
		updated++
	}

	finishedAt := s.now()

	run := models.RegradeRun{
		ActorID:     actor.ID,
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
		RowsUpdated: updated,
		RowsFailed:  len(failures),
	}
	if report, err := json.Marshal(map[string]interface{}{"failures": failures}); err == nil {
		run.Report = report
	}

	if err := s.runs.Create(ctx, &run); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist regrade audit row")
		span.RecordError(err)
	}

	if s.leaderboard != nil {
		if err := s.leaderboard.Invalidate(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate leaderboard cache")
		}
	}

	s.publish(run)

	span.SetAttributes(
		attribute.Int("regrade.rows_updated", updated),
		attribute.Int("regrade.rows_failed", len(failures)),
	)
	s.logger.Info().Int("rows_updated", updated).Int("rows_failed", len(failures)).Msg("bulk regrade finished")

	return dto.RegradeResponse{
		RunID:       run.ID,
		RowsUpdated: updated,
		RowsFailed:  len(failures),
		StartedAt:   startedAt,
		FinishedAt:  finishedAt,
		Failures:    failures,
	}, nil
}

// regradeRow recomputes one score from a fresh oracle grade and the row's
// original submission instant, then overwrites the stored score
// unconditionally.
func (s *regradeService) regradeRow(ctx context.Context, submission models.Submission) error {
	raw, err := s.oracle.Grade(ctx, submission.SubmittedSQL, submission.QuestionID)
	if err != nil {
		return err
	}

	score := s.policy.Score(raw, submission.SubmittedAt, submission.Question.DueDate)

	return s.submissions.UpdateScore(ctx, submission.ID, score)
}

func (s *regradeService) publish(run models.RegradeRun) {
	if s.nats == nil || s.natsSubject == "" {
		return
	}

	payload, err := json.Marshal(regradeEvent{
		RunID:       run.ID,
		ActorID:     run.ActorID,
		RowsUpdated: run.RowsUpdated,
		RowsFailed:  run.RowsFailed,
		FinishedAt:  run.FinishedAt,
	})
	if err != nil {
		return
	}

	if err := s.nats.Publish(s.natsSubject, payload); err != nil {
		s.logger.Warn().Err(err).Msg("failed to publish regrade event")
	}
}
