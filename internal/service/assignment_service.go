package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillport/skillport-api/internal/dto"
	"github.com/skillport/skillport-api/internal/models"
	"github.com/skillport/skillport-api/internal/repository"
)

// ErrAssignmentNotFound indicates the requested assignment does not exist.
var ErrAssignmentNotFound = errors.New("assignment not found")

// ErrEntryNotFound indicates the user has no entry on the assignment.
var ErrEntryNotFound = errors.New("assignment entry not found")

// ErrAssignmentNotDraft indicates a mutation only allowed on drafts.
var ErrAssignmentNotDraft = errors.New("assignment is not a draft")

// ErrAlreadyAssigned indicates the user already holds an entry.
var ErrAlreadyAssigned = errors.New("user already assigned")

// ErrEntryNotStartable indicates the entry is not in the assigned state.
var ErrEntryNotStartable = errors.New("entry cannot be started")

// AssignmentService exposes mentor-facing assignment use cases.
type AssignmentService interface {
	Create(ctx context.Context, mentorID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error)
	Get(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	List(ctx context.Context, filter repository.AssignmentFilter) ([]dto.AssignmentResponse, int64, error)
	Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error)
	Delete(ctx context.Context, id uint) error
	Publish(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Archive(ctx context.Context, id uint) (dto.AssignmentResponse, error)
	Assign(ctx context.Context, id uint, payload dto.AssignEntryRequest) (dto.AssignmentResponse, error)
	Start(ctx context.Context, id uint, userID uint) error
	Cancel(ctx context.Context, id uint, userID uint) error
	SetEntryFeedback(ctx context.Context, id uint, userID uint, payload dto.EntryFeedbackRequest) error
}

type assignmentService struct {
	repo      repository.AssignmentRepository
	notifier  EventNotifier
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAssignmentService builds a new assignment service.
func NewAssignmentService(repo repository.AssignmentRepository, notifier EventNotifier, validate *validator.Validate, logger zerolog.Logger) AssignmentService {
	return &assignmentService{
		repo:      repo,
		notifier:  notifier,
		validator: validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "assignment_service").Logger(),
		now:       time.Now,
	}
}

func (s *assignmentService) Create(ctx context.Context, mentorID uint, payload dto.AssignmentCreateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	deadline, err := time.Parse(time.RFC3339, payload.Deadline)
	if err != nil {
		return dto.AssignmentResponse{}, fmt.Errorf("invalid deadline: %w", err)
	}

	if !deadline.After(s.now()) {
		return dto.AssignmentResponse{}, fmt.Errorf("deadline must be in the future")
	}

	maxAttempts := payload.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	points := payload.Points
	if points <= 0 {
		points = models.DefaultAssignmentPoints
	}

	assignment := models.Assignment{
		MentorID:     mentorID,
		Title:        payload.Title,
		Description:  payload.Description,
		Platform:     strings.ToLower(payload.Platform),
		ProblemID:    payload.ProblemID,
		ProblemTitle: payload.ProblemTitle,
		Difficulty:   strings.ToLower(payload.Difficulty),
		Deadline:     deadline,
		MaxAttempts:  maxAttempts,
		Points:       points,
		Status:       models.AssignmentStatusDraft,
	}

	for _, userID := range dedupeIDs(payload.AssignedTo) {
		assignment.Entries = append(assignment.Entries, models.AssignmentEntry{
			UserID: userID,
			Status: models.EntryStatusAssigned,
		})
	}

	if err := s.repo.Create(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Uint("mentor_id", mentorID).Msg("assignment created")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Get(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) List(ctx context.Context, filter repository.AssignmentFilter) ([]dto.AssignmentResponse, int64, error) {
	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return dto.NewAssignmentResponseSlice(assignments), total, nil
}

func (s *assignmentService) Update(ctx context.Context, id uint, payload dto.AssignmentUpdateRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if assignment.Status != models.AssignmentStatusDraft {
		return dto.AssignmentResponse{}, ErrAssignmentNotDraft
	}

	if payload.Title != nil {
		assignment.Title = *payload.Title
	}
	if payload.Description != nil {
		assignment.Description = *payload.Description
	}
	if payload.Platform != nil {
		assignment.Platform = strings.ToLower(*payload.Platform)
	}
	if payload.ProblemID != nil {
		assignment.ProblemID = *payload.ProblemID
	}
	if payload.ProblemTitle != nil {
		assignment.ProblemTitle = *payload.ProblemTitle
	}
	if payload.Difficulty != nil {
		assignment.Difficulty = strings.ToLower(*payload.Difficulty)
	}
	if payload.MaxAttempts != nil {
		assignment.MaxAttempts = *payload.MaxAttempts
	}
	if payload.Points != nil {
		assignment.Points = *payload.Points
	}
	if payload.Deadline != nil {
		deadline, err := time.Parse(time.RFC3339, *payload.Deadline)
		if err != nil {
			return dto.AssignmentResponse{}, fmt.Errorf("invalid deadline: %w", err)
		}
		if !deadline.After(s.now()) {
			return dto.AssignmentResponse{}, fmt.Errorf("deadline must be in the future")
		}
		assignment.Deadline = deadline
	}

	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment updated")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}

	s.logger.Info().Uint("assignment_id", id).Msg("assignment deleted")
	return nil
}

// Publish makes a draft visible to the validation pipeline. A filterless
// assignment will match every submission by its assignees, so publishing one
// is logged loudly.
func (s *assignmentService) Publish(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	if assignment.Status != models.AssignmentStatusDraft {
		return dto.AssignmentResponse{}, ErrAssignmentNotDraft
	}

	if !assignment.HasFilters() {
		s.logger.Warn().Uint("assignment_id", assignment.ID).Msg("publishing assignment without match filters")
	}

	assignment.Status = models.AssignmentStatusPublished
	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	if s.notifier != nil {
		for _, entry := range assignment.Entries {
			if entry.Status == models.EntryStatusAssigned {
				s.notifier.AssignmentAssigned(ctx, entry.UserID, assignment)
			}
		}
	}

	s.logger.Info().Uint("assignment_id", assignment.ID).Msg("assignment published")

	return dto.NewAssignmentResponse(assignment), nil
}

func (s *assignmentService) Archive(ctx context.Context, id uint) (dto.AssignmentResponse, error) {
	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment.Status = models.AssignmentStatusArchived
	if err := s.repo.Update(ctx, &assignment); err != nil {
		return dto.AssignmentResponse{}, err
	}

	return dto.NewAssignmentResponse(assignment), nil
}

// Assign adds entries for new users. Users already holding an entry are
// skipped; the uniqueness constraint backs this up at the database level.
func (s *assignmentService) Assign(ctx context.Context, id uint, payload dto.AssignEntryRequest) (dto.AssignmentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssignmentResponse{}, err
	}

	assignment, err := s.getAssignment(ctx, id)
	if err != nil {
		return dto.AssignmentResponse{}, err
	}

	existing := make(map[uint]struct{}, len(assignment.Entries))
	for _, entry := range assignment.Entries {
		existing[entry.UserID] = struct{}{}
	}

	for _, userID := range dedupeIDs(payload.UserIDs) {
		if _, ok := existing[userID]; ok {
			continue
		}
		entry := models.AssignmentEntry{
			AssignmentID: assignment.ID,
			UserID:       userID,
			Status:       models.EntryStatusAssigned,
		}
		if err := s.repo.AddEntry(ctx, &entry); err != nil {
			return dto.AssignmentResponse{}, err
		}
		if s.notifier != nil && assignment.IsOpen() {
			s.notifier.AssignmentAssigned(ctx, userID, assignment)
		}
	}

	return s.Get(ctx, id)
}

func (s *assignmentService) Start(ctx context.Context, id uint, userID uint) error {
	started, err := s.repo.StartEntry(ctx, id, userID, s.now())
	if err != nil {
		return err
	}
	if !started {
		if _, err := s.repo.GetEntry(ctx, id, userID); errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		return ErrEntryNotStartable
	}

	s.logger.Info().Uint("assignment_id", id).Uint("user_id", userID).Msg("assignment entry started")
	return nil
}

func (s *assignmentService) Cancel(ctx context.Context, id uint, userID uint) error {
	cancelled, err := s.repo.CancelEntry(ctx, id, userID)
	if err != nil {
		return err
	}
	if !cancelled {
		return ErrEntryNotFound
	}

	s.logger.Info().Uint("assignment_id", id).Uint("user_id", userID).Msg("assignment entry cancelled")
	return nil
}

func (s *assignmentService) SetEntryFeedback(ctx context.Context, id uint, userID uint, payload dto.EntryFeedbackRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	feedback := strings.TrimSpace(s.sanitizer.Sanitize(payload.Feedback))
	if err := s.repo.SetEntryFeedback(ctx, id, userID, feedback); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		return err
	}

	return nil
}

func (s *assignmentService) getAssignment(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}

	return assignment, nil
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
