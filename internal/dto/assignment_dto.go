package dto

import (
	"time"

	"github.com/skillport/skillport-api/internal/models"
)

// AssignmentCreateRequest describes the payload for creating a new assignment.
// Filter fields are optional; an omitted criterion is never enforced during
// matching.
type AssignmentCreateRequest struct {
	Title        string `json:"title" validate:"required,min=3,max=255"`
	Description  string `json:"description" validate:"omitempty,max=5000"`
	Platform     string `json:"platform" validate:"omitempty,oneof=any leetcode hackerrank codeforces other"`
	ProblemID    string `json:"problem_id" validate:"omitempty,max=128"`
	ProblemTitle string `json:"problem_title" validate:"omitempty,max=255"`
	Difficulty   string `json:"difficulty" validate:"omitempty,oneof=easy medium hard expert"`
	Deadline     string `json:"deadline" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	MaxAttempts  int    `json:"max_attempts" validate:"omitempty,gte=1"`
	Points       int    `json:"points" validate:"omitempty,gte=0"`
	AssignedTo   []uint `json:"assigned_to" validate:"omitempty,dive,required"`
}

// AssignmentUpdateRequest describes the payload for updating a draft
// assignment.
type AssignmentUpdateRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	Platform     *string `json:"platform" validate:"omitempty,oneof=any leetcode hackerrank codeforces other"`
	ProblemID    *string `json:"problem_id" validate:"omitempty,max=128"`
	ProblemTitle *string `json:"problem_title" validate:"omitempty,max=255"`
	Difficulty   *string `json:"difficulty" validate:"omitempty,oneof=easy medium hard expert"`
	Deadline     *string `json:"deadline" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	MaxAttempts  *int    `json:"max_attempts" validate:"omitempty,gte=1"`
	Points       *int    `json:"points" validate:"omitempty,gte=0"`
}

// AssignEntryRequest adds students to an assignment.
type AssignEntryRequest struct {
	UserIDs []uint `json:"user_ids" validate:"required,min=1,dive,required"`
}

// EntryFeedbackRequest sets mentor feedback on a student's entry.
type EntryFeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,min=1,max=5000"`
}

// AssignmentEntryResponse serializes one student's progress record.
type AssignmentEntryResponse struct {
	UserID       uint       `json:"user_id"`
	Status       string     `json:"status"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Attempts     int        `json:"attempts"`
	Score        int        `json:"score"`
	SubmissionID *uint      `json:"submission_id,omitempty"`
	Feedback     string     `json:"feedback,omitempty"`
}

// AssignmentResponse is the serialized representation returned to API clients.
type AssignmentResponse struct {
	ID           uint                      `json:"id"`
	MentorID     uint                      `json:"mentor_id"`
	Title        string                    `json:"title"`
	Description  string                    `json:"description,omitempty"`
	Platform     string                    `json:"platform,omitempty"`
	ProblemID    string                    `json:"problem_id,omitempty"`
	ProblemTitle string                    `json:"problem_title,omitempty"`
	Difficulty   string                    `json:"difficulty,omitempty"`
	Deadline     time.Time                 `json:"deadline"`
	MaxAttempts  int                       `json:"max_attempts"`
	Points       int                       `json:"points"`
	Status       string                    `json:"status"`
	Entries      []AssignmentEntryResponse `json:"entries,omitempty"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
}

// NewAssignmentEntryResponse converts an entry model into a DTO.
func NewAssignmentEntryResponse(entry models.AssignmentEntry) AssignmentEntryResponse {
	return AssignmentEntryResponse{
		UserID:       entry.UserID,
		Status:       entry.Status,
		StartedAt:    entry.StartedAt,
		CompletedAt:  entry.CompletedAt,
		Attempts:     entry.Attempts,
		Score:        entry.Score,
		SubmissionID: entry.SubmissionID,
		Feedback:     entry.Feedback,
	}
}

// NewAssignmentResponse converts a model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	entries := make([]AssignmentEntryResponse, 0, len(model.Entries))
	for _, entry := range model.Entries {
		entries = append(entries, NewAssignmentEntryResponse(entry))
	}

	return AssignmentResponse{
		ID:           model.ID,
		MentorID:     model.MentorID,
		Title:        model.Title,
		Description:  model.Description,
		Platform:     model.Platform,
		ProblemID:    model.ProblemID,
		ProblemTitle: model.ProblemTitle,
		Difficulty:   model.Difficulty,
		Deadline:     model.Deadline,
		MaxAttempts:  model.MaxAttempts,
		Points:       model.Points,
		Status:       model.Status,
		Entries:      entries,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// NewAssignmentResponseSlice converts a slice of models into DTOs.
func NewAssignmentResponseSlice(assignments []models.Assignment) []AssignmentResponse {
	responses := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		responses = append(responses, NewAssignmentResponse(assignment))
	}

	return responses
}
