package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skillport/skillport-api/internal/models"
)

func seedSubmissions(t *testing.T, repo SubmissionRepository) []models.Submission {
	t.Helper()
	flaggedAt := time.Now()
	items := []models.Submission{
		{
			UserID:           7,
			Platform:         models.PlatformLeetCode,
			Difficulty:       models.DifficultyEasy,
			ProblemTitle:     "Two Sum",
			SolveTimeMinutes: 25,
			Verdict:          models.VerdictAccepted,
		},
		{
			UserID:           7,
			Platform:         models.PlatformCodeforces,
			Difficulty:       models.DifficultyExpert,
			ProblemTitle:     "Div 1 E",
			SolveTimeMinutes: 9,
			Verdict:          models.VerdictAccepted,
			IsFlagged:        true,
			FlagReason:       models.FlagReasonSuspiciousTime,
			FlagSeverity:     models.FlagSeverityHigh,
			FlagStatus:       models.FlagStatusPending,
			FlaggedAt:        &flaggedAt,
		},
		{
			UserID:           8,
			Platform:         models.PlatformLeetCode,
			Difficulty:       models.DifficultyMedium,
			ProblemTitle:     "LRU Cache",
			SolveTimeMinutes: 10,
			Verdict:          models.VerdictWrongAnswer,
			IsFlagged:        true,
			FlagReason:       models.FlagReasonSuspiciousTime,
			FlagSeverity:     models.FlagSeverityMedium,
			FlagStatus:       models.FlagStatusResolved,
			FlaggedAt:        &flaggedAt,
		},
	}
	for i := range items {
		require.NoError(t, repo.Create(context.Background(), &items[i]))
	}
	return items
}

func TestSubmissionListFilters(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	seedSubmissions(t, repo)
	ctx := context.Background()

	userID := uint(7)
	items, total, err := repo.List(ctx, SubmissionFilter{UserID: &userID})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, items, 2)

	items, total, err = repo.List(ctx, SubmissionFilter{Platform: models.PlatformLeetCode, Verdict: models.VerdictAccepted})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "Two Sum", items[0].ProblemTitle)

	flagged := true
	items, total, err = repo.List(ctx, SubmissionFilter{Flagged: &flagged})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)

	items, total, err = repo.List(ctx, SubmissionFilter{PageSize: 2, Page: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, items, 1)
}

func TestSubmissionListFlaggedByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	seedSubmissions(t, repo)
	ctx := context.Background()

	pending, err := repo.ListFlagged(ctx, models.FlagStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, models.FlagSeverityHigh, pending[0].FlagSeverity)

	all, err := repo.ListFlagged(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestSubmissionUpdatePersistsReview(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSubmissionRepository(db)
	items := seedSubmissions(t, repo)
	ctx := context.Background()

	reviewer := uint(42)
	flagged := items[1]
	flagged.FlagStatus = models.FlagStatusReviewed
	flagged.ReviewedBy = &reviewer
	flagged.ReviewNote = "talked to the student"
	require.NoError(t, repo.Update(ctx, &flagged))

	stored, err := repo.GetByID(ctx, flagged.ID)
	require.NoError(t, err)
	require.Equal(t, models.FlagStatusReviewed, stored.FlagStatus)
	require.Equal(t, reviewer, *stored.ReviewedBy)
	require.Equal(t, "talked to the student", stored.ReviewNote)
}
