package grader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	oracleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sqlgrader",
		Subsystem: "oracle",
		Name:      "grade_duration_seconds",
		Help:      "Duration of grading oracle requests",
	}, []string{"oracle"})

	oracleFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sqlgrader",
		Subsystem: "oracle",
		Name:      "grade_failures_total",
		Help:      "Number of grading oracle failures",
	}, []string{"oracle"})
)

// HTTPConfig defines configuration options for the HTTP oracle client.
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// HTTPGrader calls an external grading oracle over HTTP.
type HTTPGrader struct {
	baseURL string
	client  *http.Client
	tracer  trace.Tracer
	logger  zerolog.Logger
}

// NewHTTPGrader builds an oracle client for the configured base URL.
func NewHTTPGrader(cfg HTTPConfig) (*HTTPGrader, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("oracle base url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPGrader{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		tracer:  otel.Tracer("github.com/noah-isme/sqlgrader-api/pkg/grader"),
		logger:  cfg.Logger.With().Str("component", "http_grader").Logger(),
	}, nil
}

type gradeRequest struct {
	QuestionID uint   `json:"question_id"`
	SQL        string `json:"sql"`
}

type gradeResponse struct {
	Score float64 `json:"score"`
}

// Grade implements Grader by POSTing the submission to the oracle.
func (g *HTTPGrader) Grade(parent context.Context, sql string, questionID uint) (float64, error) {
	ctx, span := g.tracer.Start(parent, "oracle.grade", trace.WithAttributes(
		attribute.Int64("oracle.question_id", int64(questionID)),
	))
	defer span.End()

	body, err := json.Marshal(gradeRequest{QuestionID: questionID, SQL: sql})
	if err != nil {
		return 0, fmt.Errorf("encode grade request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/grade", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build grade request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	start := time.Now()
	response, err := g.client.Do(request)
	oracleDuration.WithLabelValues("http").Observe(time.Since(start).Seconds())
	if err != nil {
		oracleFailures.WithLabelValues("http").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("grade request: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		err := fmt.Errorf("oracle returned status %d", response.StatusCode)
		oracleFailures.WithLabelValues("http").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	var payload gradeResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		oracleFailures.WithLabelValues("http").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("decode grade response: %w", err)
	}

	if payload.Score < 0 {
		err := fmt.Errorf("oracle returned negative score %f", payload.Score)
		oracleFailures.WithLabelValues("http").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Float64("oracle.score", payload.Score))

	return payload.Score, nil
}
