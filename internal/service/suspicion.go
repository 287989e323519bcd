package service

import (
	"fmt"
	"time"

	"github.com/skillport/skillport-api/internal/models"
)

// Solve-time floors below which a submission is considered suspicious.
const (
	suspiciousMediumHardMinutes = 15
	suspiciousExpertMinutes     = 20
)

// SuspicionResult describes the outcome of the fast-solve check.
type SuspicionResult struct {
	Suspicious bool
	Severity   string
}

// EvaluateSuspicion decides whether a solve time is implausibly short for the
// stated difficulty. Easy problems are never flagged by this rule.
func EvaluateSuspicion(difficulty string, solveTimeMinutes int) SuspicionResult {
	suspicious := false
	switch difficulty {
	case models.DifficultyMedium, models.DifficultyHard:
		suspicious = solveTimeMinutes < suspiciousMediumHardMinutes
	case models.DifficultyExpert:
		suspicious = solveTimeMinutes < suspiciousExpertMinutes
	}

	if !suspicious {
		return SuspicionResult{}
	}

	severity := models.FlagSeverityMedium
	if difficulty == models.DifficultyExpert {
		severity = models.FlagSeverityHigh
	}

	return SuspicionResult{Suspicious: true, Severity: severity}
}

// ApplySuspicionFlag stamps the flag fields onto a brand new submission. It is
// a no-op when the submission is already flagged or the check passes; it runs
// once at creation and never retroactively.
func ApplySuspicionFlag(submission *models.Submission, now time.Time) bool {
	if submission == nil || submission.IsFlagged {
		return false
	}

	result := EvaluateSuspicion(submission.Difficulty, submission.SolveTimeMinutes)
	if !result.Suspicious {
		return false
	}

	flaggedAt := now
	submission.IsFlagged = true
	submission.FlagReason = models.FlagReasonSuspiciousTime
	submission.FlagSeverity = result.Severity
	submission.FlagDetails = fmt.Sprintf("Problem solved in %d minutes (difficulty: %s)", submission.SolveTimeMinutes, submission.Difficulty)
	submission.FlagStatus = models.FlagStatusPending
	submission.FlaggedAt = &flaggedAt

	return true
}
