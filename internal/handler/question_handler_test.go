package handler_test

import (
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sqlgrader-api/internal/dto"
)

func TestQuestionHandlerListAndGet(t *testing.T) {
	app, db := setupApp(t, 1, "student")

	seedHandlerStudent(t, db, "Jane", "jane@example.com")
	question := seedHandlerQuestion(t, db, time.Now().Add(24*time.Hour), 100)

	listReq := httptest.NewRequest("GET", "/api/v1/questions", nil)
	listResp, err := app.Test(listReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, listResp.StatusCode)

	var listBody struct {
		Success bool                   `json:"success"`
		Data    []dto.QuestionResponse `json:"data"`
	}
	decodeResponse(t, listResp, &listBody)
	require.Len(t, listBody.Data, 1)
	require.Equal(t, question.ID, listBody.Data[0].ID)

	getReq := httptest.NewRequest("GET", "/api/v1/questions/"+strconv.FormatUint(uint64(question.ID), 10), nil)
	getResp, err := app.Test(getReq)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, getResp.StatusCode)

	var getBody struct {
		Data dto.QuestionResponse `json:"data"`
	}
	decodeResponse(t, getResp, &getBody)
	require.Equal(t, question.Prompt, getBody.Data.Prompt)
}

func TestQuestionHandlerGetUnknown(t *testing.T) {
	app, db := setupApp(t, 1, "student")
	seedHandlerStudent(t, db, "Jane", "jane@example.com")

	req := httptest.NewRequest("GET", "/api/v1/questions/999", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
