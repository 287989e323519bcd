package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/skillport/skillport-api/internal/dto"
	"github.com/skillport/skillport-api/internal/models"
	"github.com/skillport/skillport-api/internal/repository"
)

// ErrContestNotFound indicates the requested contest does not exist.
var ErrContestNotFound = errors.New("contest not found")

// ContestService exposes contest tracking use cases. Contest status is always
// derived from the clock; nothing sweeps stored statuses.
type ContestService interface {
	Create(ctx context.Context, creatorID uint, payload dto.ContestCreateRequest) (dto.ContestResponse, error)
	Get(ctx context.Context, id uint) (dto.ContestResponse, error)
	List(ctx context.Context, platform string) ([]dto.ContestResponse, error)
	Update(ctx context.Context, id uint, payload dto.ContestUpdateRequest) (dto.ContestResponse, error)
	Delete(ctx context.Context, id uint) error
}

type contestService struct {
	repo      repository.ContestRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewContestService builds a new contest service.
func NewContestService(repo repository.ContestRepository, cache *redis.Client, ttl time.Duration, validate *validator.Validate, logger zerolog.Logger) ContestService {
	return &contestService{
		repo:      repo,
		cache:     cache,
		cacheTTL:  ttl,
		validator: validate,
		logger:    logger.With().Str("component", "contest_service").Logger(),
		now:       time.Now,
	}
}

func (s *contestService) Create(ctx context.Context, creatorID uint, payload dto.ContestCreateRequest) (dto.ContestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContestResponse{}, err
	}

	start, err := time.Parse(time.RFC3339, payload.StartTime)
	if err != nil {
		return dto.ContestResponse{}, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, payload.EndTime)
	if err != nil {
		return dto.ContestResponse{}, fmt.Errorf("invalid end time: %w", err)
	}
	if !end.After(start) {
		return dto.ContestResponse{}, fmt.Errorf("end time must be after start time")
	}

	contest := models.Contest{
		Title:       payload.Title,
		Description: payload.Description,
		Platform:    strings.ToLower(payload.Platform),
		URL:         payload.URL,
		StartTime:   start,
		EndTime:     end,
		CreatedBy:   creatorID,
	}

	if err := s.repo.Create(ctx, &contest); err != nil {
		return dto.ContestResponse{}, err
	}

	s.invalidateListCache(ctx)
	s.logger.Info().Uint("contest_id", contest.ID).Msg("contest created")

	return dto.NewContestResponse(contest, s.now()), nil
}

func (s *contestService) Get(ctx context.Context, id uint) (dto.ContestResponse, error) {
	contest, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestResponse{}, ErrContestNotFound
		}
		return dto.ContestResponse{}, err
	}

	return dto.NewContestResponse(contest, s.now()), nil
}

func (s *contestService) List(ctx context.Context, platform string) ([]dto.ContestResponse, error) {
	cacheKey := contestListCacheKey(platform)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var contests []models.Contest
			if unmarshalErr := json.Unmarshal([]byte(cached), &contests); unmarshalErr == nil {
				return dto.NewContestResponseSlice(contests, s.now()), nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read contest cache")
		}
	}

	contests, err := s.repo.List(ctx, strings.ToLower(platform))
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(contests); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store contest cache")
			}
		}
	}

	return dto.NewContestResponseSlice(contests, s.now()), nil
}

func (s *contestService) Update(ctx context.Context, id uint, payload dto.ContestUpdateRequest) (dto.ContestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ContestResponse{}, err
	}

	contest, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ContestResponse{}, ErrContestNotFound
		}
		return dto.ContestResponse{}, err
	}

	if payload.Title != nil {
		contest.Title = *payload.Title
	}
	if payload.Description != nil {
		contest.Description = *payload.Description
	}
	if payload.URL != nil {
		contest.URL = *payload.URL
	}
	if payload.StartTime != nil {
		start, err := time.Parse(time.RFC3339, *payload.StartTime)
		if err != nil {
			return dto.ContestResponse{}, fmt.Errorf("invalid start time: %w", err)
		}
		contest.StartTime = start
	}
	if payload.EndTime != nil {
		end, err := time.Parse(time.RFC3339, *payload.EndTime)
		if err != nil {
			return dto.ContestResponse{}, fmt.Errorf("invalid end time: %w", err)
		}
		contest.EndTime = end
	}

	if !contest.EndTime.After(contest.StartTime) {
		return dto.ContestResponse{}, fmt.Errorf("end time must be after start time")
	}

	if err := s.repo.Update(ctx, &contest); err != nil {
		return dto.ContestResponse{}, err
	}

	s.invalidateListCache(ctx)

	return dto.NewContestResponse(contest, s.now()), nil
}

func (s *contestService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrContestNotFound
		}
		return err
	}

	s.invalidateListCache(ctx)
	return nil
}

func (s *contestService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}

	platforms := []string{"", models.PlatformLeetCode, models.PlatformHackerRank, models.PlatformCodeforces, models.PlatformOther}
	for _, platform := range platforms {
		if err := s.cache.Del(ctx, contestListCacheKey(platform)).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to invalidate contest cache")
		}
	}
}

func contestListCacheKey(platform string) string {
	if platform == "" {
		return "contests:all"
	}
	return "contests:" + strings.ToLower(platform)
}
