package dto

import (
	"time"

	"github.com/skillport/skillport-api/internal/models"
)

// ContestCreateRequest describes the payload for registering a contest.
type ContestCreateRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=255"`
	Description string `json:"description" validate:"omitempty,max=5000"`
	Platform    string `json:"platform" validate:"required,oneof=leetcode hackerrank codeforces other"`
	URL         string `json:"url" validate:"omitempty,url,max=512"`
	StartTime   string `json:"start_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime     string `json:"end_time" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

// ContestUpdateRequest describes the payload for updating a contest.
type ContestUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	URL         *string `json:"url" validate:"omitempty,url,max=512"`
	StartTime   *string `json:"start_time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	EndTime     *string `json:"end_time" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// ContestResponse is the serialized representation returned to API clients.
// Status is derived from the clock, never stored.
type ContestResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Platform    string    `json:"platform"`
	URL         string    `json:"url,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewContestResponse converts a model into a DTO using the reference time to
// derive the status.
func NewContestResponse(model models.Contest, reference time.Time) ContestResponse {
	return ContestResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Platform:    model.Platform,
		URL:         model.URL,
		StartTime:   model.StartTime,
		EndTime:     model.EndTime,
		Status:      model.StatusAt(reference),
		CreatedAt:   model.CreatedAt,
	}
}

// NewContestResponseSlice converts a slice of models into DTOs.
func NewContestResponseSlice(contests []models.Contest, reference time.Time) []ContestResponse {
	responses := make([]ContestResponse, 0, len(contests))
	for _, contest := range contests {
		responses = append(responses, NewContestResponse(contest, reference))
	}

	return responses
}
