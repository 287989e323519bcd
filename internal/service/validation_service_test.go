package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skillport/skillport-api/internal/dto"
	"github.com/skillport/skillport-api/internal/models"
)

func newTestValidationService(repo *fakeAssignmentRepo, notifier EventNotifier, now time.Time) *validationService {
	svc := NewValidationService(repo, notifier, testLogger()).(*validationService)
	svc.now = func() time.Time { return now }
	return svc
}

func openAssignment(id uint, deadline time.Time, entries ...models.AssignmentEntry) models.Assignment {
	return models.Assignment{
		ID:          id,
		MentorID:    1,
		Title:       "Two Sum Practice",
		Platform:    models.PlatformLeetCode,
		ProblemTitle: "Two Sum",
		Difficulty:  models.DifficultyEasy,
		Deadline:    deadline,
		MaxAttempts: 3,
		Points:      100,
		Status:      models.AssignmentStatusPublished,
		Entries:     entries,
	}
}

func acceptedEvent(userID uint) dto.SubmissionEvent {
	submissionID := uint(99)
	return dto.SubmissionEvent{
		UserID:       userID,
		SubmissionID: &submissionID,
		Platform:     models.PlatformLeetCode,
		ProblemTitle: "Two Sum",
		Difficulty:   models.DifficultyEasy,
		Verdict:      models.VerdictAccepted,
	}
}

func TestValidateSubmissionCompletesMatchingAssignment(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	started := now.Add(-30 * time.Minute)
	repo := newFakeAssignmentRepo(openAssignment(1, now.Add(24*time.Hour), models.AssignmentEntry{
		AssignmentID: 1,
		UserID:       7,
		Status:       models.EntryStatusInProgress,
		StartedAt:    &started,
	}))
	notifier := &recordingNotifier{}
	svc := newTestValidationService(repo, notifier, now)

	outcome := svc.ValidateSubmission(context.Background(), acceptedEvent(7))
	require.True(t, outcome.Validated)
	require.Len(t, outcome.Results, 1)

	result := outcome.Results[0]
	require.True(t, result.Validated)
	require.Equal(t, 100, result.Score)
	require.Equal(t, 0, result.Penalty)
	require.False(t, result.IsOverdue)
	require.NotNil(t, result.CompletionTime)
	require.Equal(t, 30, *result.CompletionTime)

	entry, err := repo.GetEntry(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, models.EntryStatusCompleted, entry.Status)
	require.Equal(t, 100, entry.Score)
	require.Equal(t, 1, entry.Attempts)
	require.NotNil(t, entry.SubmissionID)
	require.Equal(t, uint(99), *entry.SubmissionID)

	// Sole entry completed, so the assignment transitions too.
	assignment, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, models.AssignmentStatusCompleted, assignment.Status)
	require.Equal(t, []uint{7}, notifier.completed)
	require.Equal(t, []uint{1}, notifier.fullyCompleted)
}

func TestValidateSubmissionOverduePenalty(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name         string
		overdueBy    time.Duration
		wantScore    int
		wantPenalty  int
	}{
		{"three hours late", 3*time.Hour + 20*time.Minute, 94, 6},
		{"fifteen hours late caps at twenty", 15 * time.Hour, 80, 20},
		{"days late still capped", 90 * time.Hour, 80, 20},
		{"under one hour late", 30 * time.Minute, 100, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeAssignmentRepo(openAssignment(1, now.Add(-tc.overdueBy), models.AssignmentEntry{
				AssignmentID: 1,
				UserID:       7,
				Status:       models.EntryStatusAssigned,
			}))
			svc := newTestValidationService(repo, nil, now)

			outcome := svc.ValidateSubmission(context.Background(), acceptedEvent(7))
			require.True(t, outcome.Validated)
			result := outcome.Results[0]
			require.True(t, result.IsOverdue)
			require.Equal(t, tc.wantScore, result.Score)
			require.Equal(t, tc.wantPenalty, result.Penalty)
		})
	}
}

func TestValidateSubmissionScoreNeverNegative(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	assignment := openAssignment(1, now.Add(-40*time.Hour), models.AssignmentEntry{
		AssignmentID: 1,
		UserID:       7,
		Status:       models.EntryStatusAssigned,
	})
	assignment.Points = 10
	repo := newFakeAssignmentRepo(assignment)
	svc := newTestValidationService(repo, nil, now)

	outcome := svc.ValidateSubmission(context.Background(), acceptedEvent(7))
	require.True(t, outcome.Validated)
	require.Equal(t, 0, outcome.Results[0].Score)
}

func TestValidateSubmissionRejectedVerdictConsumesAttempt(t *testing.T) {
	now := time.Now()
	repo := newFakeAssignmentRepo(openAssignment(1, now.Add(time.Hour), models.AssignmentEntry{
		AssignmentID: 1,
		UserID:       7,
		Status:       models.EntryStatusInProgress,
	}))
	svc := newTestValidationService(repo, nil, now)

	event := acceptedEvent(7)
	event.Verdict = models.VerdictWrongAnswer

	outcome := svc.ValidateSubmission(context.Background(), event)
	require.False(t, outcome.Validated)
	require.Equal(t, dto.ReasonSubmissionNotAccepted, outcome.Results[0].Reason)
	require.Equal(t, 1, outcome.Results[0].Attempts)

	entry, err := repo.GetEntry(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, 1, entry.Attempts)
	require.Equal(t, models.EntryStatusInProgress, entry.Status)
}

func TestValidateSubmissionMaxAttemptsExhausted(t *testing.T) {
	now := time.Now()
	repo := newFakeAssignmentRepo(openAssignment(1, now.Add(time.Hour), models.AssignmentEntry{
		AssignmentID: 1,
		UserID:       7,
		Status:       models.EntryStatusInProgress,
	}))
	svc := newTestValidationService(repo, nil, now)

	failed := acceptedEvent(7)
	failed.Verdict = models.VerdictTimeLimit
	for i := 0; i < 3; i++ {
		outcome := svc.ValidateSubmission(context.Background(), failed)
		require.False(t, outcome.Validated)
	}

	// Attempts are exhausted, so even an accepted submission is rejected.
	outcome := svc.ValidateSubmission(context.Background(), acceptedEvent(7))
	require.False(t, outcome.Validated)
	require.Equal(t, dto.ReasonMaxAttemptsExceeded, outcome.Results[0].Reason)
	require.Equal(t, 3, outcome.Results[0].Attempts)

	entry, err := repo.GetEntry(context.Background(), 1, 7)
	require.NoError(t, err)
	require.Equal(t, models.EntryStatusInProgress, entry.Status)
	require.Equal(t, 3, entry.Attempts)
}

func TestValidateSubmissionCriteriaMatching(t *testing.T) {
	now := time.Now()
	deadline := now.Add(time.Hour)

	cases := []struct {
		name    string
		mutate  func(*models.Assignment)
		event   func(*dto.SubmissionEvent)
		matched bool
	}{
		{
			name:    "platform mismatch",
			event:   func(e *dto.SubmissionEvent) { e.Platform = models.PlatformCodeforces },
			matched: false,
		},
		{
			name:    "platform any matches all",
			mutate:  func(a *models.Assignment) { a.Platform = models.PlatformAny },
			event:   func(e *dto.SubmissionEvent) { e.Platform = models.PlatformCodeforces },
			matched: true,
		},
		{
			name:    "title matches case-insensitively",
			event:   func(e *dto.SubmissionEvent) { e.ProblemTitle = "TWO SUM" },
			matched: true,
		},
		{
			name:    "assignment title contained in submission title",
			event:   func(e *dto.SubmissionEvent) { e.ProblemTitle = "1. Two Sum - LeetCode" },
			matched: true,
		},
		{
			name:    "submission title contained in assignment title",
			mutate:  func(a *models.Assignment) { a.ProblemTitle = "Weekly: Two Sum Challenge" },
			event:   func(e *dto.SubmissionEvent) { e.ProblemTitle = "two sum challenge" },
			matched: true,
		},
		{
			name:    "title filter set but submission title empty",
			event:   func(e *dto.SubmissionEvent) { e.ProblemTitle = "" },
			matched: false,
		},
		{
			name:    "difficulty mismatch",
			event:   func(e *dto.SubmissionEvent) { e.Difficulty = models.DifficultyHard },
			matched: false,
		},
		{
			name:    "difficulty unset on submission is not enforced",
			event:   func(e *dto.SubmissionEvent) { e.Difficulty = "" },
			matched: true,
		},
		{
			name: "problem id mismatch",
			mutate: func(a *models.Assignment) {
				a.ProblemID = "two-sum"
				a.ProblemTitle = ""
			},
			event:   func(e *dto.SubmissionEvent) { e.ProblemID = "three-sum" },
			matched: false,
		},
		{
			name: "filterless assignment matches everything",
			mutate: func(a *models.Assignment) {
				a.Platform = ""
				a.ProblemID = ""
				a.ProblemTitle = ""
				a.Difficulty = ""
			},
			event: func(e *dto.SubmissionEvent) {
				e.Platform = models.PlatformHackerRank
				e.ProblemTitle = "Anything At All"
				e.Difficulty = models.DifficultyHard
			},
			matched: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assignment := openAssignment(1, deadline, models.AssignmentEntry{
				AssignmentID: 1,
				UserID:       7,
				Status:       models.EntryStatusAssigned,
			})
			if tc.mutate != nil {
				tc.mutate(&assignment)
			}
			repo := newFakeAssignmentRepo(assignment)
			svc := newTestValidationService(repo, nil, now)

			event := acceptedEvent(7)
			if tc.event != nil {
				tc.event(&event)
			}

			outcome := svc.ValidateSubmission(context.Background(), event)
			require.Equal(t, tc.matched, outcome.Validated)
			if !tc.matched && len(outcome.Results) > 0 {
				require.NotEmpty(t, outcome.Results[0].Reason)
			}
		})
	}
}

func TestValidateSubmissionAlreadyCompletedEntry(t *testing.T) {
	now := time.Now()
	completedAt := now.Add(-time.Hour)
	repo := newFakeAssignmentRepo(openAssignment(1, now.Add(time.Hour), models.AssignmentEntry{
		AssignmentID: 1,
		UserID:       7,
		Status:       models.EntryStatusCompleted,
		CompletedAt:  &completedAt,
		Score:        100,
	}))
	svc := newTestValidationService(repo, nil, now)

	outcome := svc.ValidateSubmission(context.Background(), acceptedEvent(7))
	require.False(t, outcome.Validated)
	require.Equal(t, "no active assignments for user", outcome.Message)
}

func TestValidateSubmissionNoCandidates(t *testing.T) {
	repo := newFakeAssignmentRepo()
	svc := newTestValidationService(repo, nil, time.Now())

	outcome := svc.ValidateSubmission(context.Background(), acceptedEvent(7))
	require.False(t, outcome.Validated)
	require.Empty(t, outcome.Results)
}

func TestValidateSubmissionRepoFailureDegrades(t *testing.T) {
	repo := newFakeAssignmentRepo()
	repo.listErr = errors.New("connection refused")
	svc := newTestValidationService(repo, nil, time.Now())

	outcome := svc.ValidateSubmission(context.Background(), acceptedEvent(7))
	require.False(t, outcome.Validated)
	require.Equal(t, "validation failed", outcome.Message)
}

func TestValidateSubmissionMultipleAssignmentsValidateTogether(t *testing.T) {
	now := time.Now()
	first := openAssignment(1, now.Add(time.Hour), models.AssignmentEntry{
		AssignmentID: 1,
		UserID:       7,
		Status:       models.EntryStatusAssigned,
	})
	second := openAssignment(2, now.Add(2*time.Hour), models.AssignmentEntry{
		AssignmentID: 2,
		UserID:       7,
		Status:       models.EntryStatusAssigned,
	})
	second.Title = "Sibling Drill"
	third := openAssignment(3, now.Add(time.Hour), models.AssignmentEntry{
		AssignmentID: 3,
		UserID:       7,
		Status:       models.EntryStatusAssigned,
	})
	third.Platform = models.PlatformCodeforces

	repo := newFakeAssignmentRepo(first, second, third)
	notifier := &recordingNotifier{}
	svc := newTestValidationService(repo, notifier, now)

	outcome := svc.ValidateSubmission(context.Background(), acceptedEvent(7))
	require.True(t, outcome.Validated)
	require.Len(t, outcome.Results, 3)
	require.Len(t, outcome.ValidatedResults(), 2)
	require.Len(t, notifier.completed, 2)
}
