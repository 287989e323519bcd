package dto

// UserValidationStats summarizes a user's progress across every assignment
// they appear in. Derived on demand; an eventually-consistent snapshot.
type UserValidationStats struct {
	TotalAssigned  int     `json:"total_assigned"`
	Completed      int     `json:"completed"`
	InProgress     int     `json:"in_progress"`
	Overdue        int     `json:"overdue"`
	CompletionRate int     `json:"completion_rate"`
	AverageScore   float64 `json:"average_score"`
	TotalScore     int     `json:"total_score"`
}

// MentorValidationStats mirrors UserValidationStats scoped to a mentor's
// assignments, plus the count of distinct assignments created.
type MentorValidationStats struct {
	TotalAssignments int     `json:"total_assignments"`
	TotalAssigned    int     `json:"total_assigned"`
	Completed        int     `json:"completed"`
	InProgress       int     `json:"in_progress"`
	Overdue          int     `json:"overdue"`
	CompletionRate   int     `json:"completion_rate"`
	AverageScore     float64 `json:"average_score"`
	TotalScore       int     `json:"total_score"`
}
