package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skillport/skillport-api/internal/dto"
	"github.com/skillport/skillport-api/internal/models"
	"github.com/skillport/skillport-api/internal/repository"
)

// ValidationStatsService rolls up per-user and per-mentor completion
// statistics. Read-only; results are cached snapshots and may lag writes.
type ValidationStatsService interface {
	GetUserStats(ctx context.Context, userID uint) (dto.UserValidationStats, error)
	GetMentorStats(ctx context.Context, mentorID uint) (dto.MentorValidationStats, error)
}

type validationStatsService struct {
	assignments repository.AssignmentRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
}

// NewValidationStatsService builds the stats aggregator. A nil cache disables
// caching.
func NewValidationStatsService(assignments repository.AssignmentRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ValidationStatsService {
	return &validationStatsService{
		assignments: assignments,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "validation_stats_service").Logger(),
	}
}

func (s *validationStatsService) GetUserStats(ctx context.Context, userID uint) (dto.UserValidationStats, error) {
	cacheKey := fmt.Sprintf("stats:user:%d", userID)

	var cached dto.UserValidationStats
	if s.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	entries, err := s.assignments.EntriesForUser(ctx, userID)
	if err != nil {
		return dto.UserValidationStats{}, err
	}

	rollup := rollupEntries(entries)
	stats := dto.UserValidationStats{
		TotalAssigned:  rollup.total,
		Completed:      rollup.completed,
		InProgress:     rollup.inProgress,
		Overdue:        rollup.overdue,
		CompletionRate: rollup.completionRate(),
		AverageScore:   rollup.averageScore(),
		TotalScore:     rollup.totalScore,
	}

	s.writeCache(ctx, cacheKey, stats)

	return stats, nil
}

func (s *validationStatsService) GetMentorStats(ctx context.Context, mentorID uint) (dto.MentorValidationStats, error) {
	cacheKey := fmt.Sprintf("stats:mentor:%d", mentorID)

	var cached dto.MentorValidationStats
	if s.readCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	entries, err := s.assignments.EntriesForMentor(ctx, mentorID)
	if err != nil {
		return dto.MentorValidationStats{}, err
	}

	totalAssignments, err := s.assignments.CountByMentor(ctx, mentorID)
	if err != nil {
		return dto.MentorValidationStats{}, err
	}

	rollup := rollupEntries(entries)
	stats := dto.MentorValidationStats{
		TotalAssignments: int(totalAssignments),
		TotalAssigned:    rollup.total,
		Completed:        rollup.completed,
		InProgress:       rollup.inProgress,
		Overdue:          rollup.overdue,
		CompletionRate:   rollup.completionRate(),
		AverageScore:     rollup.averageScore(),
		TotalScore:       rollup.totalScore,
	}

	s.writeCache(ctx, cacheKey, stats)

	return stats, nil
}

func (s *validationStatsService) readCache(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}

	payload, err := s.cache.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to read stats cache")
		}
		return false
	}

	if err := json.Unmarshal([]byte(payload), target); err != nil {
		return false
	}

	return true
}

func (s *validationStatsService) writeCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to store stats cache")
	}
}

type entryRollup struct {
	total      int
	completed  int
	inProgress int
	overdue    int
	totalScore int
}

func rollupEntries(entries []models.AssignmentEntry) entryRollup {
	rollup := entryRollup{total: len(entries)}
	for _, entry := range entries {
		switch entry.Status {
		case models.EntryStatusCompleted:
			rollup.completed++
			rollup.totalScore += entry.Score
		case models.EntryStatusInProgress:
			rollup.inProgress++
		case models.EntryStatusOverdue:
			rollup.overdue++
		}
	}
	return rollup
}

func (r entryRollup) completionRate() int {
	if r.total == 0 {
		return 0
	}
	return int(math.Round(float64(r.completed) / float64(r.total) * 100))
}

func (r entryRollup) averageScore() float64 {
	if r.completed == 0 {
		return 0
	}
	return float64(r.totalScore) / float64(r.completed)
}
