package models

import "time"

// Contest lifecycle states, derived purely from the clock.
const (
	ContestStatusUpcoming  = "upcoming"
	ContestStatusActive    = "active"
	ContestStatusCompleted = "completed"
)

// Contest represents an externally hosted contest the community tracks.
type Contest struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Platform    string    `gorm:"size:32;not null" json:"platform"`
	URL         string    `gorm:"size:512" json:"url"`
	StartTime   time.Time `gorm:"not null" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	CreatedBy   uint      `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StatusAt derives the contest status for the given reference time.
func (c Contest) StatusAt(reference time.Time) string {
	switch {
	case reference.Before(c.StartTime):
		return ContestStatusUpcoming
	case reference.Before(c.EndTime):
		return ContestStatusActive
	default:
		return ContestStatusCompleted
	}
}
