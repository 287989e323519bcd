package models

import "time"

// User roles recognised by the API.
const (
	UserRoleStudent = "student"
	UserRoleMentor  = "mentor"
	UserRoleAdmin   = "admin"
)

// User statuses.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User represents a platform account (student, mentor or admin).
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"size:32;not null;default:student" json:"role"`
	Status    string    `gorm:"size:32;not null;default:active" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsMentor reports whether the user may create assignments.
func (u User) IsMentor() bool {
	return u.Role == UserRoleMentor || u.Role == UserRoleAdmin
}
