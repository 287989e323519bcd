package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/skillport/skillport-api/internal/dto"
	"github.com/skillport/skillport-api/internal/models"
)

func newTestExtensionSyncService(t *testing.T, submissions SubmissionService) ExtensionSyncService {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewExtensionSyncService(submissions, validate, testLogger())
}

func TestExtensionSyncStoresAndValidatesBatch(t *testing.T) {
	now := time.Now()
	assignmentRepo := newFakeAssignmentRepo(openAssignment(1, now.Add(time.Hour), models.AssignmentEntry{
		AssignmentID: 1,
		UserID:       7,
		Status:       models.EntryStatusAssigned,
	}))
	validation := NewValidationService(assignmentRepo, nil, testLogger())
	submissionRepo := newFakeSubmissionRepo()
	submissions := newTestSubmissionService(submissionRepo, validation, nil)
	svc := newTestExtensionSyncService(t, submissions)

	payload := dto.ExtensionSyncRequest{
		UserID: 7,
		Submissions: []dto.SubmissionCreateRequest{
			{
				Platform:         models.PlatformLeetCode,
				Difficulty:       models.DifficultyEasy,
				ProblemTitle:     "Two Sum",
				SolveTimeMinutes: 20,
				Verdict:          models.VerdictAccepted,
			},
			{
				Platform:         models.PlatformLeetCode,
				Difficulty:       models.DifficultyMedium,
				ProblemTitle:     "LRU Cache",
				SolveTimeMinutes: 6,
				Verdict:          models.VerdictAccepted,
			},
		},
	}

	response, err := svc.Sync(context.Background(), payload)
	require.NoError(t, err)
	require.Equal(t, 2, response.Synced)
	require.Equal(t, 0, response.Failed)
	require.Equal(t, 1, response.Validated)
	require.Len(t, response.Results, 2)

	require.True(t, response.Results[0].Stored)
	require.True(t, response.Results[0].Validation.Validated)
	require.False(t, response.Results[0].Flagged)

	// Second item misses the assignment criteria but trips the suspicion check.
	require.True(t, response.Results[1].Stored)
	require.False(t, response.Results[1].Validation.Validated)
	require.True(t, response.Results[1].Flagged)

	// Items inherit the batch user regardless of what the extension sent.
	stored, err := submissionRepo.GetByID(context.Background(), response.Results[0].SubmissionID)
	require.NoError(t, err)
	require.Equal(t, uint(7), stored.UserID)
}

func TestExtensionSyncIsolatesBadItems(t *testing.T) {
	submissions := newTestSubmissionService(newFakeSubmissionRepo(), nil, nil)
	svc := newTestExtensionSyncService(t, submissions)

	payload := dto.ExtensionSyncRequest{
		UserID: 7,
		Submissions: []dto.SubmissionCreateRequest{
			{
				Platform:         "unknown-judge",
				ProblemTitle:     "Broken",
				SolveTimeMinutes: 30,
				Verdict:          models.VerdictAccepted,
			},
			{
				Platform:         models.PlatformCodeforces,
				Difficulty:       models.DifficultyHard,
				ProblemTitle:     "Div 2 C",
				SolveTimeMinutes: 50,
				Verdict:          models.VerdictWrongAnswer,
			},
		},
	}

	response, err := svc.Sync(context.Background(), payload)
	require.NoError(t, err)
	require.Equal(t, 1, response.Synced)
	require.Equal(t, 1, response.Failed)
	require.NotEmpty(t, response.Results[0].Error)
	require.False(t, response.Results[0].Stored)
	require.True(t, response.Results[1].Stored)
}

func TestExtensionSyncRejectsEmptyBatch(t *testing.T) {
	submissions := newTestSubmissionService(newFakeSubmissionRepo(), nil, nil)
	svc := newTestExtensionSyncService(t, submissions)

	_, err := svc.Sync(context.Background(), dto.ExtensionSyncRequest{UserID: 7})
	require.Error(t, err)
}
