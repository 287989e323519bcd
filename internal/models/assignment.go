package models

import (
	"strings"
	"time"
)

// Assignment lifecycle states.
const (
	AssignmentStatusDraft     = "draft"
	AssignmentStatusPublished = "published"
	AssignmentStatusActive    = "active"
	AssignmentStatusCompleted = "completed"
	AssignmentStatusArchived  = "archived"
)

// Per-student entry states.
const (
	EntryStatusAssigned   = "assigned"
	EntryStatusInProgress = "in_progress"
	EntryStatusCompleted  = "completed"
	EntryStatusOverdue    = "overdue"
	EntryStatusCancelled  = "cancelled"
)

// PlatformAny matches every platform when used as a filter value.
const PlatformAny = "any"

// DefaultAssignmentPoints is the base score used when an assignment does not
// set its own.
const DefaultAssignmentPoints = 100

// Assignment is a mentor-defined task bound to optional platform, problem and
// difficulty filters. An empty filter field is not enforced during matching.
type Assignment struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	MentorID    uint   `gorm:"not null;index" json:"mentor_id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	Platform     string `gorm:"size:32" json:"platform,omitempty"`
	ProblemID    string `gorm:"size:128" json:"problem_id,omitempty"`
	ProblemTitle string `gorm:"size:255" json:"problem_title,omitempty"`
	Difficulty   string `gorm:"size:16" json:"difficulty,omitempty"`

	Deadline    time.Time `gorm:"not null" json:"deadline"`
	MaxAttempts int       `gorm:"not null;default:3" json:"max_attempts"`
	Points      int       `gorm:"not null;default:100" json:"points"`
	Status      string    `gorm:"size:32;not null;default:draft" json:"status"`

	Entries   []AssignmentEntry `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"entries,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// AssignmentEntry tracks one student's progress on one assignment. The
// (assignment_id, user_id) pair is unique so per-row updates stay atomic.
// Attempts counts every evaluated submission, failures and the final success
// alike.
type AssignmentEntry struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AssignmentID uint       `gorm:"not null;uniqueIndex:idx_assignment_user" json:"assignment_id"`
	UserID       uint       `gorm:"not null;uniqueIndex:idx_assignment_user;index" json:"user_id"`
	Status       string     `gorm:"size:32;not null;default:assigned" json:"status"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Attempts     int        `gorm:"not null;default:0" json:"attempts"`
	Score        int        `gorm:"not null;default:0" json:"score"`
	SubmissionID *uint      `json:"submission_id,omitempty"`
	Feedback     string     `gorm:"type:text" json:"feedback,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsOpen reports whether the assignment accepts submission validation.
func (a Assignment) IsOpen() bool {
	return a.Status == AssignmentStatusPublished || a.Status == AssignmentStatusActive
}

// IsPastDeadline returns true when the deadline has already passed.
func (a Assignment) IsPastDeadline(reference time.Time) bool {
	return reference.After(a.Deadline)
}

// HasPlatformFilter reports whether the platform criterion is enforced.
func (a Assignment) HasPlatformFilter() bool {
	platform := strings.ToLower(strings.TrimSpace(a.Platform))
	return platform != "" && platform != PlatformAny
}

// HasFilters reports whether any matching criterion is set. A filterless
// assignment matches every submission by its assignees.
func (a Assignment) HasFilters() bool {
	return a.HasPlatformFilter() || a.ProblemID != "" || a.ProblemTitle != "" || a.Difficulty != ""
}

// IsTerminal reports whether the entry can no longer change state.
func (e AssignmentEntry) IsTerminal() bool {
	return e.Status == EntryStatusCompleted || e.Status == EntryStatusCancelled
}

// IsEligible reports whether the entry may still be validated against.
func (e AssignmentEntry) IsEligible() bool {
	return e.Status == EntryStatusAssigned || e.Status == EntryStatusInProgress
}
