package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OpenAIConfig defines configuration options for the LLM-backed oracle.
type OpenAIConfig struct {
	APIKey   string
	Model    string
	MaxScore float64
	Logger   zerolog.Logger
}

// OpenAIGrader scores SQL submissions with a chat-completion rubric. It is a
// fallback oracle for question banks without reference result sets.
type OpenAIGrader struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIGrader builds an LLM oracle using the provided configuration.
func NewOpenAIGrader(cfg OpenAIConfig) (*OpenAIGrader, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxScore <= 0 {
		cfg.MaxScore = 100
	}

	return &OpenAIGrader{
		client: openai.NewClientWithConfig(openai.DefaultConfig(cfg.APIKey)),
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/sqlgrader-api/pkg/grader/openai"),
		logger: cfg.Logger.With().Str("component", "openai_grader").Logger(),
	}, nil
}

// Grade implements Grader.
func (g *OpenAIGrader) Grade(parent context.Context, sql string, questionID uint) (float64, error) {
	ctx, span := g.tracer.Start(parent, "openai.grade", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.Int64("oracle.question_id", int64(questionID)),
	))
	defer span.End()

	request := openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: graderSystemPrompt(g.cfg.MaxScore),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildGradePrompt(sql, questionID),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, request)
	oracleDuration.WithLabelValues("openai").Observe(time.Since(start).Seconds())
	if err != nil {
		oracleFailures.WithLabelValues("openai").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("openai grade: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		oracleFailures.WithLabelValues("openai").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	score, err := parseGradeResponse(strings.TrimSpace(resp.Choices[0].Message.Content), g.cfg.MaxScore)
	if err != nil {
		oracleFailures.WithLabelValues("openai").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Float64("oracle.score", score))

	return score, nil
}

func graderSystemPrompt(maxScore float64) string {
	return fmt.Sprintf("You are an automated SQL grader. Respond with a JSON object containing a single numeric field "+
		"score between 0 and %.0f reflecting how correct the submitted query is for the referenced exercise.", maxScore)
}

func buildGradePrompt(sql string, questionID uint) string {
	builder := strings.Builder{}
	builder.WriteString("# Exercise\n")
	builder.WriteString(fmt.Sprintf("question_id: %d\n", questionID))
	builder.WriteString("\n## Submitted SQL\n")
	builder.WriteString(sql)
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseGradeResponse(content string, maxScore float64) (float64, error) {
	var payload struct {
		Score float64 `json:"score"`
	}

	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return 0, fmt.Errorf("parse grade json: %w", err)
	}

	if payload.Score < 0 {
		payload.Score = 0
	}
	if payload.Score > maxScore {
		payload.Score = maxScore
	}

	return payload.Score, nil
}
