package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skillport/skillport-api/internal/dto"
	"github.com/skillport/skillport-api/internal/models"
	"github.com/skillport/skillport-api/internal/observability"
	"github.com/skillport/skillport-api/internal/repository"
)

// Deadline penalty parameters: two percentage points per overdue hour, capped.
const (
	overduePenaltyPerHour = 2
	overduePenaltyCap     = 20
)

// EventNotifier receives pipeline events worth telling users about. A nil
// notifier disables delivery without affecting validation.
type EventNotifier interface {
	AssignmentAssigned(ctx context.Context, userID uint, assignment models.Assignment)
	AssignmentCompleted(ctx context.Context, userID uint, assignment models.Assignment, score int)
	AssignmentFullyCompleted(ctx context.Context, assignment models.Assignment)
	SubmissionFlagged(ctx context.Context, submission models.Submission)
}

// ValidationService matches submission events against the submitting user's
// open assignments and finalizes any that validate.
type ValidationService interface {
	ValidateSubmission(ctx context.Context, event dto.SubmissionEvent) dto.ValidationOutcome
}

type validationService struct {
	assignments repository.AssignmentRepository
	notifier    EventNotifier
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewValidationService builds the validation pipeline.
func NewValidationService(assignments repository.AssignmentRepository, notifier EventNotifier, logger zerolog.Logger) ValidationService {
	return &validationService{
		assignments: assignments,
		notifier:    notifier,
		logger:      logger.With().Str("component", "validation_service").Logger(),
		tracer:      otel.Tracer("github.com/skillport/skillport-api/internal/service/validation"),
		now:         time.Now,
	}
}

// ValidateSubmission runs one validation pass. Failures never propagate to the
// caller: the submission itself is always recorded, and a broken pipeline
// degrades to "no assignment credit applied".
func (s *validationService) ValidateSubmission(ctx context.Context, event dto.SubmissionEvent) dto.ValidationOutcome {
	ctx, span := s.tracer.Start(ctx, "validation.submission", trace.WithAttributes(
		attribute.Int64("validation.user_id", int64(event.UserID)),
		attribute.String("validation.platform", event.Platform),
		attribute.String("validation.verdict", event.Verdict),
	))
	defer span.End()

	candidates, err := s.assignments.ListOpenForUser(ctx, event.UserID)
	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", event.UserID).Msg("failed to load candidate assignments")
		span.RecordError(err)
		observability.Validations().WithLabelValues("error").Inc()
		return dto.ValidationOutcome{Validated: false, Message: "validation failed"}
	}

	if len(candidates) == 0 {
		observability.Validations().WithLabelValues("no_candidates").Inc()
		return dto.ValidationOutcome{Validated: false, Message: "no active assignments for user"}
	}

	results := make([]dto.AssignmentValidationResult, 0, len(candidates))
	for _, assignment := range candidates {
		results = append(results, s.evaluateAssignment(ctx, assignment, event))
	}

	outcome := dto.ValidationOutcome{Results: results}
	matched := outcome.ValidatedResults()
	if len(matched) > 0 {
		outcome.Validated = true
		outcome.Message = fmt.Sprintf("submission validated against %d assignment(s)", len(matched))
		observability.Validations().WithLabelValues("validated").Inc()
	} else {
		outcome.Message = "no assignment matched"
		observability.Validations().WithLabelValues("not_validated").Inc()
	}

	span.SetAttributes(
		attribute.Int("validation.candidates", len(candidates)),
		attribute.Int("validation.matched", len(matched)),
	)

	return outcome
}

// evaluateAssignment applies the match criteria and attempt/completion rules
// to a single candidate. Persistence errors are confined here so one broken
// assignment cannot abort its siblings.
func (s *validationService) evaluateAssignment(ctx context.Context, assignment models.Assignment, event dto.SubmissionEvent) dto.AssignmentValidationResult {
	result := dto.AssignmentValidationResult{
		AssignmentID:    assignment.ID,
		AssignmentTitle: assignment.Title,
	}

	if !matchesCriteria(assignment, event) {
		result.Reason = dto.ReasonCriteriaNotMatched
		return result
	}

	entry, found := entryForUser(assignment, event.UserID)
	if !found {
		// Should not happen: the candidate query joins on the user's entry.
		result.Reason = dto.ReasonCriteriaNotMatched
		return result
	}

	if entry.Status == models.EntryStatusCompleted {
		result.Reason = dto.ReasonAlreadyCompleted
		return result
	}

	// A rejected verdict still consumes an attempt.
	if event.Verdict != models.VerdictAccepted {
		attempts, err := s.assignments.IncrementAttempts(ctx, assignment.ID, event.UserID)
		if err != nil {
			return s.failResult(result, assignment.ID, err)
		}
		result.Reason = dto.ReasonSubmissionNotAccepted
		result.Attempts = attempts
		return result
	}

	if entry.Attempts >= assignment.MaxAttempts {
		result.Reason = dto.ReasonMaxAttemptsExceeded
		result.Attempts = entry.Attempts
		return result
	}

	return s.finalizeCompletion(ctx, assignment, entry, event, result)
}

// finalizeCompletion scores the match and transitions the entry, then the
// assignment itself once every entry is done.
func (s *validationService) finalizeCompletion(ctx context.Context, assignment models.Assignment, entry models.AssignmentEntry, event dto.SubmissionEvent, result dto.AssignmentValidationResult) dto.AssignmentValidationResult {
	now := s.now()

	base := assignment.Points
	if base <= 0 {
		base = models.DefaultAssignmentPoints
	}

	isOverdue := now.After(assignment.Deadline)
	penalty := 0
	if isOverdue {
		overdueHours := int(now.Sub(assignment.Deadline).Hours())
		penalty = overdueHours * overduePenaltyPerHour
		if penalty > overduePenaltyCap {
			penalty = overduePenaltyCap
		}
	}

	score := base - penalty
	if score < 0 {
		score = 0
	}

	var completionTime *int
	if entry.StartedAt != nil {
		minutes := int(now.Sub(*entry.StartedAt).Minutes())
		completionTime = &minutes
	}

	completed, err := s.assignments.CompleteEntry(ctx, assignment.ID, event.UserID, repository.EntryCompletion{
		Score:        score,
		SubmissionID: event.SubmissionID,
		CompletedAt:  now,
	})
	if err != nil {
		return s.failResult(result, assignment.ID, err)
	}
	if !completed {
		// A concurrent submission won the race.
		result.Reason = dto.ReasonAlreadyCompleted
		return result
	}

	transitioned, err := s.assignments.MarkCompletedIfAllEntriesDone(ctx, assignment.ID)
	if err != nil {
		s.logger.Error().Err(err).Uint("assignment_id", assignment.ID).Msg("failed to check assignment completion")
	}

	result.Validated = true
	result.Score = score
	result.CompletionTime = completionTime
	result.IsOverdue = isOverdue
	result.Penalty = base - score

	s.logger.Info().
		Uint("assignment_id", assignment.ID).
		Uint("user_id", event.UserID).
		Int("score", score).
		Bool("overdue", isOverdue).
		Msg("assignment entry completed")

	if s.notifier != nil {
		s.notifier.AssignmentCompleted(ctx, event.UserID, assignment, score)
		if transitioned {
			s.notifier.AssignmentFullyCompleted(ctx, assignment)
		}
	}

	return result
}

func (s *validationService) failResult(result dto.AssignmentValidationResult, assignmentID uint, err error) dto.AssignmentValidationResult {
	s.logger.Error().Err(err).Uint("assignment_id", assignmentID).Msg("assignment validation failed")
	observability.Validations().WithLabelValues("error").Inc()
	result.Reason = dto.ReasonValidationFailed
	return result
}

// matchesCriteria applies the assignment's filters to the event. An unset
// criterion is never enforced, so a filterless assignment matches every
// submission by its assignees.
func matchesCriteria(assignment models.Assignment, event dto.SubmissionEvent) bool {
	if assignment.HasPlatformFilter() && !strings.EqualFold(assignment.Platform, event.Platform) {
		return false
	}

	if assignment.ProblemID != "" && assignment.ProblemID != event.ProblemID {
		return false
	}

	if assignment.ProblemTitle != "" {
		if event.ProblemTitle == "" {
			return false
		}
		want := strings.ToLower(assignment.ProblemTitle)
		got := strings.ToLower(event.ProblemTitle)
		if !strings.Contains(want, got) && !strings.Contains(got, want) {
			return false
		}
	}

	if assignment.Difficulty != "" && event.Difficulty != "" && !strings.EqualFold(assignment.Difficulty, event.Difficulty) {
		return false
	}

	return true
}

func entryForUser(assignment models.Assignment, userID uint) (models.AssignmentEntry, bool) {
	for _, entry := range assignment.Entries {
		if entry.UserID == userID {
			return entry, true
		}
	}
	return models.AssignmentEntry{}, false
}
