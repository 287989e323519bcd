package dto

import (
	"time"

	"github.com/skillport/skillport-api/internal/models"
)

// SubmissionCreateRequest describes the payload for recording a submission.
type SubmissionCreateRequest struct {
	UserID           uint                   `json:"user_id" validate:"required"`
	Platform         string                 `json:"platform" validate:"required,oneof=leetcode hackerrank codeforces other"`
	Language         string                 `json:"language" validate:"omitempty,max=32"`
	Difficulty       string                 `json:"difficulty" validate:"omitempty,oneof=easy medium hard expert"`
	ProblemID        string                 `json:"problem_id" validate:"omitempty,max=128"`
	ProblemTitle     string                 `json:"problem_title" validate:"omitempty,max=255"`
	SolveTimeMinutes int                    `json:"solve_time_minutes" validate:"gte=0"`
	Verdict          string                 `json:"verdict" validate:"required,oneof=accepted wrong_answer time_limit runtime_error compile_error other"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// FlagReviewRequest transitions a flagged submission through moderator review.
type FlagReviewRequest struct {
	Status string `json:"status" validate:"required,oneof=reviewed resolved false_positive"`
	Note   string `json:"note" validate:"omitempty,max=2000"`
}

// SubmissionFeedbackRequest appends mentor feedback to a submission.
type SubmissionFeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,min=1,max=5000"`
}

// SubmissionResponse is the serialized representation returned to API clients.
type SubmissionResponse struct {
	ID               uint                   `json:"id"`
	UserID           uint                   `json:"user_id"`
	Platform         string                 `json:"platform"`
	Language         string                 `json:"language,omitempty"`
	Difficulty       string                 `json:"difficulty,omitempty"`
	ProblemID        string                 `json:"problem_id,omitempty"`
	ProblemTitle     string                 `json:"problem_title,omitempty"`
	SolveTimeMinutes int                    `json:"solve_time_minutes"`
	Verdict          string                 `json:"verdict"`
	IsFlagged        bool                   `json:"is_flagged"`
	FlagReason       string                 `json:"flag_reason,omitempty"`
	FlagSeverity     string                 `json:"flag_severity,omitempty"`
	FlagDetails      string                 `json:"flag_details,omitempty"`
	FlagStatus       string                 `json:"flag_status,omitempty"`
	FlaggedAt        *time.Time             `json:"flagged_at,omitempty"`
	Feedback         string                 `json:"feedback,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// NewSubmissionResponse converts a model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:               model.ID,
		UserID:           model.UserID,
		Platform:         model.Platform,
		Language:         model.Language,
		Difficulty:       model.Difficulty,
		ProblemID:        model.ProblemID,
		ProblemTitle:     model.ProblemTitle,
		SolveTimeMinutes: model.SolveTimeMinutes,
		Verdict:          model.Verdict,
		IsFlagged:        model.IsFlagged,
		FlagReason:       model.FlagReason,
		FlagSeverity:     model.FlagSeverity,
		FlagDetails:      model.FlagDetails,
		FlagStatus:       model.FlagStatus,
		FlaggedAt:        model.FlaggedAt,
		Feedback:         model.Feedback,
		Metadata:         map[string]interface{}(model.Metadata),
		CreatedAt:        model.CreatedAt,
	}
}

// NewSubmissionResponseSlice converts a slice of models into DTOs.
func NewSubmissionResponseSlice(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}

// Event converts the create request into the normalized validation event.
func (r SubmissionCreateRequest) Event(submissionID *uint) SubmissionEvent {
	return SubmissionEvent{
		UserID:       r.UserID,
		SubmissionID: submissionID,
		Platform:     r.Platform,
		ProblemID:    r.ProblemID,
		ProblemTitle: r.ProblemTitle,
		Difficulty:   r.Difficulty,
		Verdict:      r.Verdict,
	}
}
