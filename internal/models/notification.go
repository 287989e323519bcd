package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types emitted by the validation pipeline.
const (
	NotificationTypeAssignmentCompleted = "assignment_completed"
	NotificationTypeSubmissionFlagged   = "submission_flagged"
	NotificationTypeAssignmentAssigned  = "assignment_assigned"
	NotificationTypeGeneral             = "general"
)

// Notification is a message addressed to a single user.
type Notification struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    string            `gorm:"size:64;not null;index" json:"user_id"`
	Type      string            `gorm:"size:64;not null" json:"type"`
	Message   string            `gorm:"type:text;not null" json:"message"`
	Read      bool              `gorm:"default:false" json:"read"`
	Metadata  datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
