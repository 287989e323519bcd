package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/skillport/skillport-api/internal/models"
)

// AssignmentFilter describes pagination & search options for listing.
type AssignmentFilter struct {
	MentorID *uint
	Status   string
	Search   string
	Page     int
	PageSize int
}

// EntryCompletion carries the values written onto an entry when a submission
// validates it.
type EntryCompletion struct {
	Score        int
	SubmissionID *uint
	CompletedAt  time.Time
}

// AssignmentRepository defines persistence operations for assignments and
// their per-student entries.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	GetByID(ctx context.Context, id uint) (models.Assignment, error)
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, int64, error)

	ListOpenForUser(ctx context.Context, userID uint) ([]models.Assignment, error)
	AddEntry(ctx context.Context, entry *models.AssignmentEntry) error
	GetEntry(ctx context.Context, assignmentID, userID uint) (models.AssignmentEntry, error)
	StartEntry(ctx context.Context, assignmentID, userID uint, startedAt time.Time) (bool, error)
	CancelEntry(ctx context.Context, assignmentID, userID uint) (bool, error)
	IncrementAttempts(ctx context.Context, assignmentID, userID uint) (int, error)
	CompleteEntry(ctx context.Context, assignmentID, userID uint, completion EntryCompletion) (bool, error)
	SetEntryFeedback(ctx context.Context, assignmentID, userID uint, feedback string) error
	MarkCompletedIfAllEntriesDone(ctx context.Context, assignmentID uint) (bool, error)

	EntriesForUser(ctx context.Context, userID uint) ([]models.AssignmentEntry, error)
	EntriesForMentor(ctx context.Context, mentorID uint) ([]models.AssignmentEntry, error)
	CountByMentor(ctx context.Context, mentorID uint) (int64, error)
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepository) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).Preload("Entries").First(&assignment, id).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

func (r *assignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Omit("Entries").Save(assignment).Error
}

func (r *assignmentRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Assignment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepository) List(ctx context.Context, filter AssignmentFilter) ([]models.Assignment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Assignment{})

	if filter.MentorID != nil {
		query = query.Where("mentor_id = ?", *filter.MentorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("deadline ASC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var assignments []models.Assignment
	if err := query.Preload("Entries").Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

// ListOpenForUser returns published or active assignments holding an eligible
// entry for the given user, with entries preloaded.
func (r *assignmentRepository) ListOpenForUser(ctx context.Context, userID uint) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).
		Joins("JOIN assignment_entries ON assignment_entries.assignment_id = assignments.id").
		Where("assignment_entries.user_id = ?", userID).
		Where("assignment_entries.status IN ?", []string{models.EntryStatusAssigned, models.EntryStatusInProgress}).
		Where("assignments.status IN ?", []string{models.AssignmentStatusPublished, models.AssignmentStatusActive}).
		Preload("Entries").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) AddEntry(ctx context.Context, entry *models.AssignmentEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *assignmentRepository) GetEntry(ctx context.Context, assignmentID, userID uint) (models.AssignmentEntry, error) {
	var entry models.AssignmentEntry
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		First(&entry).Error
	if err != nil {
		return models.AssignmentEntry{}, err
	}

	return entry, nil
}

// StartEntry transitions assigned -> in_progress. Returns false when the entry
// is missing or already started.
func (r *assignmentRepository) StartEntry(ctx context.Context, assignmentID, userID uint, startedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.AssignmentEntry{}).
		Where("assignment_id = ? AND user_id = ? AND status = ?", assignmentID, userID, models.EntryStatusAssigned).
		Updates(map[string]interface{}{
			"status":     models.EntryStatusInProgress,
			"started_at": startedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// CancelEntry transitions a non-terminal entry to cancelled.
func (r *assignmentRepository) CancelEntry(ctx context.Context, assignmentID, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.AssignmentEntry{}).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		Where("status NOT IN ?", []string{models.EntryStatusCompleted, models.EntryStatusCancelled}).
		Update("status", models.EntryStatusCancelled)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// IncrementAttempts bumps the attempt counter atomically and returns the new
// count. Keyed by (assignment_id, user_id) so concurrent submissions for the
// same entry cannot lose updates.
func (r *assignmentRepository) IncrementAttempts(ctx context.Context, assignmentID, userID uint) (int, error) {
	result := r.db.WithContext(ctx).Model(&models.AssignmentEntry{}).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		UpdateColumn("attempts", gorm.Expr("attempts + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	entry, err := r.GetEntry(ctx, assignmentID, userID)
	if err != nil {
		return 0, err
	}

	return entry.Attempts, nil
}

// CompleteEntry marks the entry completed in a single conditional update. The
// status guard means a racing double-submit cannot complete the same entry
// twice. The successful attempt also increments the counter.
func (r *assignmentRepository) CompleteEntry(ctx context.Context, assignmentID, userID uint, completion EntryCompletion) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.AssignmentEntry{}).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		Where("status NOT IN ?", []string{models.EntryStatusCompleted, models.EntryStatusCancelled}).
		Updates(map[string]interface{}{
			"status":        models.EntryStatusCompleted,
			"completed_at":  completion.CompletedAt,
			"score":         completion.Score,
			"submission_id": completion.SubmissionID,
			"attempts":      gorm.Expr("attempts + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *assignmentRepository) SetEntryFeedback(ctx context.Context, assignmentID, userID uint, feedback string) error {
	result := r.db.WithContext(ctx).Model(&models.AssignmentEntry{}).
		Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
		Update("feedback", feedback)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkCompletedIfAllEntriesDone transitions the assignment to completed when
// no entry remains incomplete. Conditional so concurrent finalizers converge
// on a single transition.
func (r *assignmentRepository) MarkCompletedIfAllEntriesDone(ctx context.Context, assignmentID uint) (bool, error) {
	var remaining int64
	err := r.db.WithContext(ctx).Model(&models.AssignmentEntry{}).
		Where("assignment_id = ? AND status <> ?", assignmentID, models.EntryStatusCompleted).
		Count(&remaining).Error
	if err != nil {
		return false, err
	}
	if remaining > 0 {
		return false, nil
	}

	result := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("id = ? AND status <> ?", assignmentID, models.AssignmentStatusCompleted).
		Update("status", models.AssignmentStatusCompleted)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *assignmentRepository) EntriesForUser(ctx context.Context, userID uint) ([]models.AssignmentEntry, error) {
	var entries []models.AssignmentEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *assignmentRepository) EntriesForMentor(ctx context.Context, mentorID uint) ([]models.AssignmentEntry, error) {
	var entries []models.AssignmentEntry
	err := r.db.WithContext(ctx).
		Joins("JOIN assignments ON assignments.id = assignment_entries.assignment_id").
		Where("assignments.mentor_id = ?", mentorID).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *assignmentRepository) CountByMentor(ctx context.Context, mentorID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Assignment{}).
		Where("mentor_id = ?", mentorID).
		Count(&total).Error
	if err != nil {
		return 0, err
	}

	return total, nil
}
