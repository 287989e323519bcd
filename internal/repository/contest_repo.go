package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/skillport/skillport-api/internal/models"
)

// ContestRepository defines persistence operations for contests.
type ContestRepository interface {
	Create(ctx context.Context, contest *models.Contest) error
	GetByID(ctx context.Context, id uint) (models.Contest, error)
	Update(ctx context.Context, contest *models.Contest) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, platform string) ([]models.Contest, error)
}

type contestRepository struct {
	db *gorm.DB
}

// NewContestRepository instantiates a GORM-backed repository.
func NewContestRepository(db *gorm.DB) ContestRepository {
	return &contestRepository{db: db}
}

func (r *contestRepository) Create(ctx context.Context, contest *models.Contest) error {
	return r.db.WithContext(ctx).Create(contest).Error
}

func (r *contestRepository) GetByID(ctx context.Context, id uint) (models.Contest, error) {
	var contest models.Contest
	if err := r.db.WithContext(ctx).First(&contest, id).Error; err != nil {
		return models.Contest{}, err
	}

	return contest, nil
}

func (r *contestRepository) Update(ctx context.Context, contest *models.Contest) error {
	return r.db.WithContext(ctx).Save(contest).Error
}

func (r *contestRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Contest{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *contestRepository) List(ctx context.Context, platform string) ([]models.Contest, error) {
	query := r.db.WithContext(ctx).Model(&models.Contest{})
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}

	var contests []models.Contest
	if err := query.Order("start_time ASC").Find(&contests).Error; err != nil {
		return nil, err
	}

	return contests, nil
}
