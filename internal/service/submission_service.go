package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/skillport/skillport-api/internal/dto"
	"github.com/skillport/skillport-api/internal/models"
	"github.com/skillport/skillport-api/internal/observability"
	"github.com/skillport/skillport-api/internal/repository"
)

// ErrSubmissionNotFound indicates the requested submission does not exist.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrSubmissionNotFlagged indicates a review was requested on an unflagged submission.
var ErrSubmissionNotFlagged = errors.New("submission not flagged")

// ErrInvalidFlagTransition indicates the requested review state is unreachable.
var ErrInvalidFlagTransition = errors.New("invalid flag status transition")

// SubmissionService exposes submission domain use cases. Creation runs the
// suspicion check inline and then hands the event to the validation pipeline;
// validation failures never reject the submission.
type SubmissionService interface {
	Create(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, dto.ValidationOutcome, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	List(ctx context.Context, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, int64, error)
	ListFlagged(ctx context.Context, flagStatus string) ([]dto.SubmissionResponse, error)
	ReviewFlag(ctx context.Context, id uint, reviewerID uint, payload dto.FlagReviewRequest) (dto.SubmissionResponse, error)
	AddFeedback(ctx context.Context, id uint, payload dto.SubmissionFeedbackRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	repo       repository.SubmissionRepository
	validation ValidationService
	notifier   EventNotifier
	validator  *validator.Validate
	sanitizer  *bluemonday.Policy
	logger     zerolog.Logger
	now        func() time.Time
}

// NewSubmissionService builds a new submission service.
func NewSubmissionService(repo repository.SubmissionRepository, validation ValidationService, notifier EventNotifier, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		repo:       repo,
		validation: validation,
		notifier:   notifier,
		validator:  validate,
		sanitizer:  bluemonday.StrictPolicy(),
		logger:     logger.With().Str("component", "submission_service").Logger(),
		now:        time.Now,
	}
}

func (s *submissionService) Create(ctx context.Context, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, dto.ValidationOutcome, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, dto.ValidationOutcome{}, err
	}

	submission := models.Submission{
		UserID:           payload.UserID,
		Platform:         strings.ToLower(payload.Platform),
		Language:         payload.Language,
		Difficulty:       strings.ToLower(payload.Difficulty),
		ProblemID:        payload.ProblemID,
		ProblemTitle:     payload.ProblemTitle,
		SolveTimeMinutes: payload.SolveTimeMinutes,
		Verdict:          strings.ToLower(payload.Verdict),
		Metadata:         datatypes.JSONMap(payload.Metadata),
	}

	flagged := ApplySuspicionFlag(&submission, s.now())

	if err := s.repo.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, dto.ValidationOutcome{}, err
	}

	observability.Submissions().WithLabelValues(submission.Platform, submission.Verdict).Inc()
	if flagged {
		observability.SubmissionsFlagged().Inc()
		s.logger.Warn().
			Uint("submission_id", submission.ID).
			Uint("user_id", submission.UserID).
			Str("severity", submission.FlagSeverity).
			Int("solve_time_minutes", submission.SolveTimeMinutes).
			Msg("submission flagged as suspicious")
		if s.notifier != nil {
			s.notifier.SubmissionFlagged(ctx, submission)
		}
	}

	outcome := dto.ValidationOutcome{Validated: false, Message: "validation skipped"}
	if s.validation != nil {
		outcome = s.validation.ValidateSubmission(ctx, payload.Event(&submission.ID))
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("user_id", submission.UserID).
		Bool("validated", outcome.Validated).
		Msg("submission recorded")

	return dto.NewSubmissionResponse(submission), outcome, nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) List(ctx context.Context, filter repository.SubmissionFilter) ([]dto.SubmissionResponse, int64, error) {
	submissions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return dto.NewSubmissionResponseSlice(submissions), total, nil
}

func (s *submissionService) ListFlagged(ctx context.Context, flagStatus string) ([]dto.SubmissionResponse, error) {
	submissions, err := s.repo.ListFlagged(ctx, flagStatus)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

// ReviewFlag moves a flagged submission through moderator review. The flag
// itself is never silently cleared; only the review status advances.
func (s *submissionService) ReviewFlag(ctx context.Context, id uint, reviewerID uint, payload dto.FlagReviewRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if !submission.IsFlagged {
		return dto.SubmissionResponse{}, ErrSubmissionNotFlagged
	}

	if !models.ValidFlagTransition(submission.FlagStatus, payload.Status) {
		return dto.SubmissionResponse{}, ErrInvalidFlagTransition
	}

	submission.FlagStatus = payload.Status
	submission.ReviewedBy = &reviewerID
	submission.ReviewNote = strings.TrimSpace(s.sanitizer.Sanitize(payload.Note))

	if err := s.repo.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", submission.ID).
		Uint("reviewer_id", reviewerID).
		Str("flag_status", submission.FlagStatus).
		Msg("flag review updated")

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) AddFeedback(ctx context.Context, id uint, payload dto.SubmissionFeedbackRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	submission.Feedback = strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))
	if err := s.repo.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}
