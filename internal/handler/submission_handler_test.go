package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skillport/skillport-api/internal/dto"
	"github.com/skillport/skillport-api/internal/handler"
	"github.com/skillport/skillport-api/internal/models"
	"github.com/skillport/skillport-api/internal/repository"
	"github.com/skillport/skillport-api/internal/service"
)

func setupSubmissionApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", handlerDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Submission{}, &models.Assignment{}, &models.AssignmentEntry{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	submissionRepo := repository.NewSubmissionRepository(db)
	submissions := service.NewSubmissionService(submissionRepo, nil, nil, validate, zerolog.Nop())
	h := handler.NewSubmissionHandler(submissions, validate, zerolog.Nop())

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(42))
		c.Locals("user_role", "mentor")
		return c.Next()
	})
	h.Register(app.Group("/api/v1/submissions"))

	return app, db
}

func postSubmission(t *testing.T, app *fiber.App, payload dto.SubmissionCreateRequest) dto.SubmissionResponse {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var envelope struct {
		Data struct {
			Submission dto.SubmissionResponse `json:"submission"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Data.Submission
}

func TestSubmissionCreateEndpointFlagsFastExpertSolve(t *testing.T) {
	app, _ := setupSubmissionApp(t)

	created := postSubmission(t, app, dto.SubmissionCreateRequest{
		UserID:           7,
		Platform:         models.PlatformLeetCode,
		Difficulty:       models.DifficultyExpert,
		ProblemTitle:     "Regular Expression Matching",
		SolveTimeMinutes: 11,
		Verdict:          models.VerdictAccepted,
	})

	require.True(t, created.IsFlagged)
	require.Equal(t, models.FlagSeverityHigh, created.FlagSeverity)
	require.Equal(t, "Problem solved in 11 minutes (difficulty: expert)", created.FlagDetails)
}

func TestSubmissionFlagReviewEndpoint(t *testing.T) {
	app, _ := setupSubmissionApp(t)

	created := postSubmission(t, app, dto.SubmissionCreateRequest{
		UserID:           7,
		Platform:         models.PlatformCodeforces,
		Difficulty:       models.DifficultyMedium,
		ProblemTitle:     "B. Round Corridor",
		SolveTimeMinutes: 3,
		Verdict:          models.VerdictAccepted,
	})
	require.True(t, created.IsFlagged)

	body, err := json.Marshal(dto.FlagReviewRequest{Status: models.FlagStatusFalsePositive, Note: "verified stream recording"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/v1/submissions/%d/flag", created.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	flaggedReq := httptest.NewRequest(http.MethodGet, "/api/v1/submissions/flagged?status=false_positive", nil)
	flaggedResp, err := app.Test(flaggedReq, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, flaggedResp.StatusCode)

	var envelope struct {
		Data []dto.SubmissionResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(flaggedResp.Body).Decode(&envelope))
	require.Len(t, envelope.Data, 1)
	require.Equal(t, created.ID, envelope.Data[0].ID)
}

func TestSubmissionFlagReviewRejectsInvalidTransition(t *testing.T) {
	app, _ := setupSubmissionApp(t)

	created := postSubmission(t, app, dto.SubmissionCreateRequest{
		UserID:           7,
		Platform:         models.PlatformLeetCode,
		Difficulty:       models.DifficultyEasy,
		ProblemTitle:     "Two Sum",
		SolveTimeMinutes: 40,
		Verdict:          models.VerdictAccepted,
	})
	require.False(t, created.IsFlagged)

	body, err := json.Marshal(dto.FlagReviewRequest{Status: models.FlagStatusReviewed})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/v1/submissions/%d/flag", created.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSubmissionListEndpointFilters(t *testing.T) {
	app, _ := setupSubmissionApp(t)

	postSubmission(t, app, dto.SubmissionCreateRequest{
		UserID:           7,
		Platform:         models.PlatformLeetCode,
		Difficulty:       models.DifficultyEasy,
		ProblemTitle:     "Two Sum",
		SolveTimeMinutes: 30,
		Verdict:          models.VerdictAccepted,
	})
	postSubmission(t, app, dto.SubmissionCreateRequest{
		UserID:           8,
		Platform:         models.PlatformHackerRank,
		Difficulty:       models.DifficultyMedium,
		ProblemTitle:     "Climbing the Leaderboard",
		SolveTimeMinutes: 40,
		Verdict:          models.VerdictWrongAnswer,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/submissions?user_id=7", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Data struct {
			Submissions []dto.SubmissionResponse `json:"submissions"`
			Total       int64                    `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Equal(t, int64(1), envelope.Data.Total)
	require.Equal(t, uint(7), envelope.Data.Submissions[0].UserID)
}
