package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/skillport/skillport-api/internal/dto"
	"github.com/skillport/skillport-api/internal/models"
	"github.com/skillport/skillport-api/internal/repository"
)

// MentorDashboard aggregates a mentor's assignments with progress rollups.
type MentorDashboard struct {
	MentorID    uint                        `json:"mentor_id"`
	MentorName  string                      `json:"mentor_name,omitempty"`
	Assignments []MentorDashboardAssignment `json:"assignments"`
	Stats       dto.MentorValidationStats   `json:"stats"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

// MentorDashboardAssignment is one assignment row on the dashboard.
type MentorDashboardAssignment struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	Deadline     time.Time `json:"deadline"`
	PastDeadline bool      `json:"past_deadline"`
	Assigned     int       `json:"assigned"`
	Completed    int       `json:"completed"`
	InProgress   int       `json:"in_progress"`
}

// MentorDashboardService produces the mentor dashboard view.
type MentorDashboardService interface {
	GetDashboard(ctx context.Context, mentorID uint) (MentorDashboard, error)
}

type mentorDashboardService struct {
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	stats       ValidationStatsService
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewMentorDashboardService builds the dashboard aggregator. The user
// repository is optional; without it the dashboard omits the mentor name.
func NewMentorDashboardService(assignments repository.AssignmentRepository, users repository.UserRepository, stats ValidationStatsService, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) MentorDashboardService {
	return &mentorDashboardService{
		assignments: assignments,
		users:       users,
		stats:       stats,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "mentor_dashboard_service").Logger(),
		now:         time.Now,
	}
}

func (s *mentorDashboardService) GetDashboard(ctx context.Context, mentorID uint) (MentorDashboard, error) {
	cacheKey := fmt.Sprintf("dashboard:mentor:%d", mentorID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var dashboard MentorDashboard
			if unmarshalErr := json.Unmarshal([]byte(cached), &dashboard); unmarshalErr == nil {
				s.logger.Debug().Uint("mentor_id", mentorID).Msg("dashboard cache hit")
				return dashboard, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	assignments, _, err := s.assignments.List(ctx, repository.AssignmentFilter{MentorID: &mentorID})
	if err != nil {
		return MentorDashboard{}, err
	}

	stats, err := s.stats.GetMentorStats(ctx, mentorID)
	if err != nil {
		return MentorDashboard{}, err
	}

	dashboard := s.buildDashboard(mentorID, assignments, stats)

	if s.users != nil {
		if mentor, err := s.users.GetByID(ctx, mentorID); err == nil {
			dashboard.MentorName = mentor.Name
		}
	}

	if s.cache != nil {
		if payload, err := json.Marshal(dashboard); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return dashboard, nil
}

func (s *mentorDashboardService) buildDashboard(mentorID uint, assignments []models.Assignment, stats dto.MentorValidationStats) MentorDashboard {
	now := s.now()
	rows := make([]MentorDashboardAssignment, 0, len(assignments))

	for _, assignment := range assignments {
		row := MentorDashboardAssignment{
			ID:           assignment.ID,
			Title:        assignment.Title,
			Status:       assignment.Status,
			Deadline:     assignment.Deadline,
			PastDeadline: assignment.IsPastDeadline(now),
			Assigned:     len(assignment.Entries),
		}
		for _, entry := range assignment.Entries {
			switch entry.Status {
			case models.EntryStatusCompleted:
				row.Completed++
			case models.EntryStatusInProgress:
				row.InProgress++
			}
		}
		rows = append(rows, row)
	}

	return MentorDashboard{
		MentorID:    mentorID,
		Assignments: rows,
		Stats:       stats,
		GeneratedAt: now,
	}
}
