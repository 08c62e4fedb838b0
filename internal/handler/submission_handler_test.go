package handler_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sqlgrader-api/internal/dto"
	"github.com/noah-isme/sqlgrader-api/internal/models"
)

func TestSubmissionHandlerSubmitAndList(t *testing.T) {
	app, db := setupApp(t, 1, "student")

	seedHandlerStudent(t, db, "Jane", "jane@example.com")
	question := seedHandlerQuestion(t, db, time.Now().Add(24*time.Hour), 100)

	body, err := json.Marshal(dto.SubmissionCreateRequest{QuestionID: question.ID, SQL: "SELECT * FROM invoices"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/submissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var createResp struct {
		Success bool                   `json:"success"`
		Data    dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &createResp)
	require.True(t, createResp.Success)
	require.NotZero(t, createResp.Data.ID)
	require.Equal(t, 100, createResp.Data.Score, "on-time submission keeps the full oracle score")

	listReq := httptest.NewRequest("GET", "/api/v1/submissions", nil)
	listResp, err := app.Test(listReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, listResp.StatusCode)

	var listBody struct {
		Success bool                     `json:"success"`
		Data    []dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, listResp, &listBody)
	require.Len(t, listBody.Data, 1)
	require.Equal(t, question.ID, listBody.Data[0].Question.ID)
}

func TestSubmissionHandlerLateSubmissionHalved(t *testing.T) {
	app, db := setupApp(t, 1, "student")

	seedHandlerStudent(t, db, "Jane", "jane@example.com")
	question := seedHandlerQuestion(t, db, time.Now().AddDate(0, 0, -3), 100)

	body, err := json.Marshal(dto.SubmissionCreateRequest{QuestionID: question.ID, SQL: "SELECT 1"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/submissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var createResp struct {
		Data dto.SubmissionResponse `json:"data"`
	}
	decodeResponse(t, resp, &createResp)
	require.Equal(t, 50, createResp.Data.Score)
}

func TestSubmissionHandlerUnknownQuestion(t *testing.T) {
	app, db := setupApp(t, 1, "student")
	seedHandlerStudent(t, db, "Jane", "jane@example.com")

	body, err := json.Marshal(dto.SubmissionCreateRequest{QuestionID: 999, SQL: "SELECT 1"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/submissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSubmissionHandlerResubmitForeignSubmission(t *testing.T) {
	app, db := setupApp(t, 1, "student")

	seedHandlerStudent(t, db, "Jane", "jane@example.com")
	other := seedHandlerStudent(t, db, "Bob", "bob@example.com")
	question := seedHandlerQuestion(t, db, time.Now().Add(24*time.Hour), 100)

	foreign := models.Submission{StudentID: other.ID, QuestionID: question.ID, SubmittedSQL: "SELECT 1", Score: 80, SubmittedAt: time.Now()}
	require.NoError(t, db.Create(&foreign).Error)

	body, err := json.Marshal(dto.ResubmitRequest{SQL: "SELECT 2"})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/submissions/"+strconv.FormatUint(uint64(foreign.ID), 10)+"/resubmit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestSubmissionHandlerExportCSV(t *testing.T) {
	app, db := setupApp(t, 1, "student")

	seedHandlerStudent(t, db, "Jane", "jane@example.com")
	question := seedHandlerQuestion(t, db, time.Now().Add(24*time.Hour), 100)

	submission := models.Submission{StudentID: 1, QuestionID: question.ID, SubmittedSQL: "SELECT 1", Score: 100, SubmittedAt: time.Now()}
	require.NoError(t, db.Create(&submission).Error)

	req := httptest.NewRequest("GET", "/api/v1/submissions/export", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	require.Equal(t, "attachment; filename=submissions.csv", resp.Header.Get("Content-Disposition"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, []string{"Prompt", "Due Date", "Submitted SQL", "Score", "Submitted At", "Status", "Timing"}, records[0])
	require.Equal(t, "Correct", records[1][5])
	require.Equal(t, "On Time", records[1][6])
}

func TestSubmissionHandlerHistory(t *testing.T) {
	app, db := setupApp(t, 1, "student")

	seedHandlerStudent(t, db, "Jane", "jane@example.com")
	question := seedHandlerQuestion(t, db, time.Now().Add(24*time.Hour), 100)

	submission := models.Submission{StudentID: 1, QuestionID: question.ID, SubmittedSQL: "SELECT 1", Score: 30, SubmittedAt: time.Now()}
	require.NoError(t, db.Create(&submission).Error)

	req := httptest.NewRequest("GET", "/api/v1/submissions/history", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var historyResp struct {
		Success bool                       `json:"success"`
		Data    []dto.HistoryEntryResponse `json:"data"`
	}
	decodeResponse(t, resp, &historyResp)
	require.Len(t, historyResp.Data, 1)
	require.Equal(t, "Wrong", historyResp.Data[0].Status)
	require.Equal(t, "On Time", historyResp.Data[0].Timing)
}
