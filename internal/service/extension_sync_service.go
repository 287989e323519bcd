package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/skillport/skillport-api/internal/dto"
)

// ExtensionSyncService ingests batches of submissions pushed by the browser
// extension. Each item is stored and validated independently; one bad item
// never fails the batch.
type ExtensionSyncService interface {
	Sync(ctx context.Context, payload dto.ExtensionSyncRequest) (dto.ExtensionSyncResponse, error)
}

type extensionSyncService struct {
	submissions SubmissionService
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewExtensionSyncService builds the extension sync ingress.
func NewExtensionSyncService(submissions SubmissionService, validate *validator.Validate, logger zerolog.Logger) ExtensionSyncService {
	return &extensionSyncService{
		submissions: submissions,
		validator:   validate,
		logger:      logger.With().Str("component", "extension_sync_service").Logger(),
		now:         time.Now,
	}
}

func (s *extensionSyncService) Sync(ctx context.Context, payload dto.ExtensionSyncRequest) (dto.ExtensionSyncResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ExtensionSyncResponse{}, err
	}

	response := dto.ExtensionSyncResponse{
		Results: make([]dto.ExtensionSyncItemResult, 0, len(payload.Submissions)),
	}

	for _, item := range payload.Submissions {
		item.UserID = payload.UserID

		result := dto.ExtensionSyncItemResult{ProblemTitle: item.ProblemTitle}

		submission, outcome, err := s.submissions.Create(ctx, item)
		if err != nil {
			s.logger.Error().Err(err).Uint("user_id", payload.UserID).Str("problem", item.ProblemTitle).Msg("failed to store synced submission")
			result.Error = err.Error()
			response.Failed++
			response.Results = append(response.Results, result)
			continue
		}

		result.Stored = true
		result.SubmissionID = submission.ID
		result.Flagged = submission.IsFlagged
		result.Validation = outcome
		response.Synced++
		if outcome.Validated {
			response.Validated++
		}
		response.Results = append(response.Results, result)
	}

	s.logger.Info().
		Uint("user_id", payload.UserID).
		Int("synced", response.Synced).
		Int("failed", response.Failed).
		Int("validated", response.Validated).
		Msg("extension sync processed")

	return response, nil
}
