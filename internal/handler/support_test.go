package handler_test

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/sqlgrader-api/internal/config"
	"github.com/noah-isme/sqlgrader-api/internal/handler"
	"github.com/noah-isme/sqlgrader-api/internal/models"
	"github.com/noah-isme/sqlgrader-api/internal/repository"
	"github.com/noah-isme/sqlgrader-api/internal/router"
	"github.com/noah-isme/sqlgrader-api/internal/scoring"
	"github.com/noah-isme/sqlgrader-api/internal/service"
	"github.com/noah-isme/sqlgrader-api/pkg/grader"
)

// setupApp wires the full route table against an in-memory database. The
// returned app authenticates every request as the given user.
func setupApp(t *testing.T, userID uint, role string) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.Question{}, &models.Submission{}, &models.RegradeRun{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)
	policy := scoring.Default()
	oracle := grader.Static{Score: 100}

	studentRepo := repository.NewStudentRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	regradeRunRepo := repository.NewRegradeRunRepository(db)

	authService := service.NewAuthService(studentRepo, validate, "test-secret", time.Hour, logger)
	questionService, err := service.NewQuestionService(questionRepo, logger)
	require.NoError(t, err)
	leaderboardService := service.NewLeaderboardService(submissionRepo, nil, time.Minute, logger)
	submissionService := service.NewSubmissionService(submissionRepo, questionRepo, oracle, policy, leaderboardService, validate, logger)
	exportService := service.NewExportService(submissionRepo, policy, logger)
	regradeService := service.NewRegradeService(submissionRepo, regradeRunRepo, oracle, policy, leaderboardService, nil, "", logger)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Test", JWTSecret: "test-secret"}, router.Dependencies{
		AuthHandler:        handler.NewAuthHandler(authService, logger),
		QuestionHandler:    handler.NewQuestionHandler(questionService, logger),
		SubmissionHandler:  handler.NewSubmissionHandler(submissionService, exportService, logger),
		LeaderboardHandler: handler.NewLeaderboardHandler(leaderboardService, logger),
		AdminHandler:       handler.NewAdminHandler(regradeService, questionService, logger),
		JWTMiddleware: func(c *fiber.Ctx) error {
			c.Locals("user_id", userID)
			c.Locals("user_role", role)
			return c.Next()
		},
	})

	return app, db
}

func seedHandlerStudent(t *testing.T, db *gorm.DB, name, email string) models.Student {
	t.Helper()
	student := models.Student{Name: name, Email: email, PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)
	return student
}

func seedHandlerQuestion(t *testing.T, db *gorm.DB, due time.Time, maxScore int) models.Question {
	t.Helper()
	question := models.Question{Prompt: "List overdue invoices", DueDate: due, MaxScore: maxScore}
	require.NoError(t, db.Create(&question).Error)
	return question
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}
