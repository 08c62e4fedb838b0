package handler_test

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sqlgrader-api/internal/dto"
	"github.com/noah-isme/sqlgrader-api/internal/models"
)

func TestAdminHandlerSeedQuestions(t *testing.T) {
	app, db := setupApp(t, 1, "admin")
	seedHandlerStudent(t, db, "Admin", "admin@example.com")

	payload := []byte(`[
		{"prompt": "List customers", "due_date": "2026-09-15T00:00:00Z", "max_score": 100},
		{"prompt": "Join orders", "due_date": "2026-10-01T00:00:00Z", "max_score": 50}
	]`)

	req := httptest.NewRequest("POST", "/api/v1/admin/questions/seed", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var seedResp struct {
		Success bool `json:"success"`
		Data    struct {
			Inserted int64 `json:"inserted"`
		} `json:"data"`
	}
	decodeResponse(t, resp, &seedResp)
	require.True(t, seedResp.Success)
	require.Equal(t, int64(2), seedResp.Data.Inserted)

	var count int64
	require.NoError(t, db.Model(&models.Question{}).Count(&count).Error)
	require.Equal(t, int64(2), count)
}

func TestAdminHandlerSeedRejectsInvalidPayload(t *testing.T) {
	app, db := setupApp(t, 1, "admin")
	seedHandlerStudent(t, db, "Admin", "admin@example.com")

	req := httptest.NewRequest("POST", "/api/v1/admin/questions/seed", bytes.NewReader([]byte(`[{"prompt": ""}]`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAdminHandlerRegradeAppliesCurrentPolicy(t *testing.T) {
	app, db := setupApp(t, 1, "admin")

	admin := seedHandlerStudent(t, db, "Admin", "admin@example.com")
	question := seedHandlerQuestion(t, db, time.Now().AddDate(0, 0, -3), 100)

	// Graded on time under an older question deadline; the stored score no
	// longer matches the current oracle verdict.
	stale := models.Submission{StudentID: admin.ID, QuestionID: question.ID, SubmittedSQL: "SELECT 1", Score: 10, SubmittedAt: time.Now().AddDate(0, 0, -5)}
	require.NoError(t, db.Create(&stale).Error)

	req := httptest.NewRequest("POST", "/api/v1/admin/regrade", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var regradeResp struct {
		Success bool                `json:"success"`
		Data    dto.RegradeResponse `json:"data"`
	}
	decodeResponse(t, resp, &regradeResp)
	require.True(t, regradeResp.Success)
	require.Equal(t, 1, regradeResp.Data.RowsUpdated)
	require.Zero(t, regradeResp.Data.RowsFailed)
	require.NotZero(t, regradeResp.Data.RunID)

	var updated models.Submission
	require.NoError(t, db.First(&updated, stale.ID).Error)
	require.Equal(t, 100, updated.Score, "submitted before the deadline, so the full oracle score stands")

	var runs int64
	require.NoError(t, db.Model(&models.RegradeRun{}).Count(&runs).Error)
	require.Equal(t, int64(1), runs)
}

func TestAdminHandlerRejectsNonAdmin(t *testing.T) {
	app, db := setupApp(t, 1, "student")
	seedHandlerStudent(t, db, "Jane", "jane@example.com")

	req := httptest.NewRequest("POST", "/api/v1/admin/regrade", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
