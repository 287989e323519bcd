package models

import (
	"time"

	"gorm.io/datatypes"
)

// Platforms a submission can originate from.
const (
	PlatformLeetCode   = "leetcode"
	PlatformHackerRank = "hackerrank"
	PlatformCodeforces = "codeforces"
	PlatformOther      = "other"
)

// Difficulty levels reported by the extension.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
	DifficultyExpert = "expert"
)

// Verdicts a submission can carry.
const (
	VerdictAccepted     = "accepted"
	VerdictWrongAnswer  = "wrong_answer"
	VerdictTimeLimit    = "time_limit"
	VerdictRuntimeError = "runtime_error"
	VerdictCompileError = "compile_error"
	VerdictOther        = "other"
)

// Flag severities assigned by the suspicion check.
const (
	FlagSeverityMedium = "medium"
	FlagSeverityHigh   = "high"
)

// Flag review lifecycle states.
const (
	FlagStatusPending       = "pending"
	FlagStatusReviewed      = "reviewed"
	FlagStatusResolved      = "resolved"
	FlagStatusFalsePositive = "false_positive"
)

// FlagReasonSuspiciousTime marks submissions solved implausibly fast.
const FlagReasonSuspiciousTime = "suspicious_time"

// Submission represents one code-solving event synced from an external judge.
// Flag fields are written once at creation; only the review fields mutate
// afterwards. Mentor feedback is appended later.
type Submission struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	UserID           uint              `gorm:"not null;index" json:"user_id"`
	Platform         string            `gorm:"size:32;not null" json:"platform"`
	Language         string            `gorm:"size:32" json:"language"`
	Difficulty       string            `gorm:"size:16" json:"difficulty"`
	ProblemID        string            `gorm:"size:128" json:"problem_id"`
	ProblemTitle     string            `gorm:"size:255" json:"problem_title"`
	SolveTimeMinutes int               `gorm:"default:0" json:"solve_time_minutes"`
	Verdict          string            `gorm:"size:32;not null" json:"verdict"`
	Metadata         datatypes.JSONMap `gorm:"type:json" json:"metadata"`

	IsFlagged    bool       `gorm:"default:false;index" json:"is_flagged"`
	FlagReason   string     `gorm:"size:64" json:"flag_reason,omitempty"`
	FlagSeverity string     `gorm:"size:16" json:"flag_severity,omitempty"`
	FlagDetails  string     `gorm:"size:255" json:"flag_details,omitempty"`
	FlagStatus   string     `gorm:"size:32" json:"flag_status,omitempty"`
	FlaggedAt    *time.Time `json:"flagged_at,omitempty"`
	ReviewedBy   *uint      `json:"reviewed_by,omitempty"`
	ReviewNote   string     `gorm:"type:text" json:"review_note,omitempty"`

	Feedback  string    `gorm:"type:text" json:"feedback,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAccepted reports whether the verdict counts as a successful solve.
func (s Submission) IsAccepted() bool {
	return s.Verdict == VerdictAccepted
}

// ValidFlagTransition reports whether a moderator may move the flag review
// from its current state to the requested one.
func ValidFlagTransition(from, to string) bool {
	switch from {
	case FlagStatusPending:
		return to == FlagStatusReviewed || to == FlagStatusResolved || to == FlagStatusFalsePositive
	case FlagStatusReviewed:
		return to == FlagStatusResolved || to == FlagStatusFalsePositive
	default:
		return false
	}
}
