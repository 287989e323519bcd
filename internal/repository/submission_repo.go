package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/skillport/skillport-api/internal/models"
)

// SubmissionFilter narrows submission listings.
type SubmissionFilter struct {
	UserID     *uint
	Platform   string
	Difficulty string
	Verdict    string
	Flagged    *bool
	Page       int
	PageSize   int
}

// SubmissionRepository defines persistence operations for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, int64, error)
	Update(ctx context.Context, submission *models.Submission) error
	ListFlagged(ctx context.Context, flagStatus string) ([]models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates a GORM-backed repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Platform != "" {
		query = query.Where("platform = ?", strings.ToLower(strings.TrimSpace(filter.Platform)))
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", strings.ToLower(strings.TrimSpace(filter.Difficulty)))
	}
	if filter.Verdict != "" {
		query = query.Where("verdict = ?", strings.ToLower(strings.TrimSpace(filter.Verdict)))
	}
	if filter.Flagged != nil {
		query = query.Where("is_flagged = ?", *filter.Flagged)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC")
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var submissions []models.Submission
	if err := query.Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *submissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Save(submission).Error
}

func (r *submissionRepository) ListFlagged(ctx context.Context, flagStatus string) ([]models.Submission, error) {
	query := r.db.WithContext(ctx).Where("is_flagged = ?", true)
	if flagStatus != "" {
		query = query.Where("flag_status = ?", flagStatus)
	}

	var submissions []models.Submission
	if err := query.Order("flagged_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}
