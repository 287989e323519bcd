package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

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

var handlerDBCounter atomic.Int64

func setupSyncApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", handlerDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Submission{}, &models.Assignment{}, &models.AssignmentEntry{}))

	validate := validator.New(validator.WithRequiredStructEnabled())
	submissionRepo := repository.NewSubmissionRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	validation := service.NewValidationService(assignmentRepo, nil, zerolog.Nop())
	submissions := service.NewSubmissionService(submissionRepo, validation, nil, validate, zerolog.Nop())
	sync := service.NewExtensionSyncService(submissions, validate, zerolog.Nop())

	h := handler.NewExtensionHandler(sync, validate, zerolog.Nop())

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(7))
		return c.Next()
	})
	h.Register(app.Group("/api/v1/extension"))

	return app, db
}

func TestExtensionSyncEndpoint(t *testing.T) {
	app, db := setupSyncApp(t)

	assignment := models.Assignment{
		MentorID:     1,
		Title:        "Two Sum Practice",
		Platform:     models.PlatformLeetCode,
		ProblemTitle: "Two Sum",
		Deadline:     time.Now().Add(24 * time.Hour),
		MaxAttempts:  3,
		Points:       100,
		Status:       models.AssignmentStatusPublished,
		Entries:      []models.AssignmentEntry{{UserID: 7, Status: models.EntryStatusAssigned}},
	}
	require.NoError(t, db.Create(&assignment).Error)

	payload := dto.ExtensionSyncRequest{
		UserID: 7,
		Submissions: []dto.SubmissionCreateRequest{
			{
				Platform:         models.PlatformLeetCode,
				Difficulty:       models.DifficultyEasy,
				ProblemTitle:     "Two Sum",
				SolveTimeMinutes: 22,
				Verdict:          models.VerdictAccepted,
			},
			{
				Platform:         models.PlatformLeetCode,
				Difficulty:       models.DifficultyHard,
				ProblemTitle:     "Word Ladder II",
				SolveTimeMinutes: 4,
				Verdict:          models.VerdictAccepted,
			},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extension/sync", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Success bool                      `json:"success"`
		Message string                    `json:"message"`
		Data    dto.ExtensionSyncResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	require.Equal(t, 2, envelope.Data.Synced)
	require.Equal(t, 1, envelope.Data.Validated)

	require.True(t, envelope.Data.Results[0].Validation.Validated)
	require.False(t, envelope.Data.Results[0].Flagged)
	require.True(t, envelope.Data.Results[1].Flagged)

	var entry models.AssignmentEntry
	require.NoError(t, db.Where("assignment_id = ? AND user_id = ?", assignment.ID, 7).First(&entry).Error)
	require.Equal(t, models.EntryStatusCompleted, entry.Status)
	require.Equal(t, 100, entry.Score)
}

func TestExtensionSyncEndpointFallsBackToAuthenticatedUser(t *testing.T) {
	app, db := setupSyncApp(t)

	payload := map[string]interface{}{
		"submissions": []dto.SubmissionCreateRequest{
			{
				Platform:         models.PlatformCodeforces,
				Difficulty:       models.DifficultyEasy,
				ProblemTitle:     "A. Watermelon",
				SolveTimeMinutes: 12,
				Verdict:          models.VerdictAccepted,
			},
		},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extension/sync", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.Submission
	require.NoError(t, db.First(&stored).Error)
	require.Equal(t, uint(7), stored.UserID)
}

func TestExtensionSyncEndpointRejectsEmptyBody(t *testing.T) {
	app, _ := setupSyncApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extension/sync", bytes.NewReader([]byte(`{"submissions":[]}`)))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
