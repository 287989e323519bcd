package dto

// SubmissionEvent is the normalized payload the validation pipeline consumes.
// It is produced by the extension sync and submission creation paths.
type SubmissionEvent struct {
	UserID       uint   `json:"user_id" validate:"required"`
	SubmissionID *uint  `json:"submission_id,omitempty"`
	Platform     string `json:"platform" validate:"required,oneof=leetcode hackerrank codeforces other"`
	ProblemID    string `json:"problem_id,omitempty"`
	ProblemTitle string `json:"problem_title,omitempty"`
	Difficulty   string `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard expert"`
	Verdict      string `json:"verdict" validate:"required"`
}

// Non-validation reasons reported per assignment. These are outcomes, not
// errors: the submission itself is always accepted and stored.
const (
	ReasonCriteriaNotMatched    = "criteria not matched"
	ReasonAlreadyCompleted      = "already completed"
	ReasonSubmissionNotAccepted = "submission not accepted"
	ReasonMaxAttemptsExceeded   = "max attempts exceeded"
	ReasonValidationFailed      = "validation failed"
)

// AssignmentValidationResult reports the outcome for a single candidate
// assignment.
type AssignmentValidationResult struct {
	AssignmentID    uint   `json:"assignment_id"`
	AssignmentTitle string `json:"assignment_title"`
	Validated       bool   `json:"validated"`
	Reason          string `json:"reason,omitempty"`
	Attempts        int    `json:"attempts,omitempty"`
	Score           int    `json:"score,omitempty"`
	CompletionTime  *int   `json:"completion_time,omitempty"`
	IsOverdue       bool   `json:"is_overdue,omitempty"`
	Penalty         int    `json:"penalty,omitempty"`
}

// ValidationOutcome aggregates the results of one validation pass. A single
// submission event may validate several assignments at once.
type ValidationOutcome struct {
	Validated bool                         `json:"validated"`
	Message   string                       `json:"message"`
	Results   []AssignmentValidationResult `json:"results,omitempty"`
}

// ValidatedResults filters the outcome down to successful matches.
func (o ValidationOutcome) ValidatedResults() []AssignmentValidationResult {
	matched := make([]AssignmentValidationResult, 0, len(o.Results))
	for _, result := range o.Results {
		if result.Validated {
			matched = append(matched, result)
		}
	}
	return matched
}
