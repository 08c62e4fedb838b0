package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/gorm"

	"github.com/noah-isme/sqlgrader-api/internal/dto"
	"github.com/noah-isme/sqlgrader-api/internal/models"
	"github.com/noah-isme/sqlgrader-api/internal/repository"
)

// ErrSeedInvalid indicates a seed payload failed schema validation.
var ErrSeedInvalid = errors.New("seed payload invalid")

// seedSchema constrains the admin seed payload before any row is decoded.
const seedSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["prompt", "due_date", "max_score"],
		"properties": {
			"prompt": {"type": "string", "minLength": 1},
			"due_date": {"type": "string", "format": "date-time"},
			"max_score": {"type": "integer", "minimum": 1}
		},
		"additionalProperties": false
	}
}`

// QuestionService serves the question bank and admin seeding.
type QuestionService interface {
	List(ctx context.Context) ([]dto.QuestionResponse, error)
	Get(ctx context.Context, id uint) (dto.QuestionResponse, error)
	Seed(ctx context.Context, payload []byte) (int64, error)
}

type questionService struct {
	questions repository.QuestionRepository
	sanitizer *bluemonday.Policy
	schema    *jsonschema.Schema
	logger    zerolog.Logger
}

// NewQuestionService constructs a QuestionService instance.
func NewQuestionService(questions repository.QuestionRepository, logger zerolog.Logger) (QuestionService, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("seed.schema.json", strings.NewReader(seedSchema)); err != nil {
		return nil, fmt.Errorf("register seed schema: %w", err)
	}
	schema, err := compiler.Compile("seed.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile seed schema: %w", err)
	}

	return &questionService{
		questions: questions,
		sanitizer: bluemonday.UGCPolicy(),
		schema:    schema,
		logger:    logger.With().Str("component", "question_service").Logger(),
	}, nil
}

func (s *questionService) List(ctx context.Context) ([]dto.QuestionResponse, error) {
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.QuestionResponse, 0, len(questions))
	for _, question := range questions {
		responses = append(responses, dto.NewQuestionResponse(question, s.sanitizer.Sanitize(question.Prompt)))
	}

	return responses, nil
}

func (s *questionService) Get(ctx context.Context, id uint) (dto.QuestionResponse, error) {
	question, err := s.questions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuestionResponse{}, ErrQuestionNotFound
		}
		return dto.QuestionResponse{}, err
	}

	return dto.NewQuestionResponse(question, s.sanitizer.Sanitize(question.Prompt)), nil
}

func (s *questionService) Seed(ctx context.Context, payload []byte) (int64, error) {
	var document interface{}
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSeedInvalid, err)
	}

	if err := s.schema.Validate(document); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSeedInvalid, err)
	}

	var seeds []dto.QuestionSeed
	if err := json.Unmarshal(payload, &seeds); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSeedInvalid, err)
	}

	questions := make([]models.Question, 0, len(seeds))
	for _, seed := range seeds {
		questions = append(questions, models.Question{
			Prompt:   seed.Prompt,
			DueDate:  seed.DueDate,
			MaxScore: seed.MaxScore,
		})
	}

	inserted, err := s.questions.CreateBatch(ctx, questions)
	if err != nil {
		return 0, err
	}

	s.logger.Info().Int64("inserted", inserted).Msg("questions seeded")

	return inserted, nil
}
