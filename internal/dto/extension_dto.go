package dto

// ExtensionSyncRequest is the batch payload the browser extension pushes.
type ExtensionSyncRequest struct {
	UserID      uint                      `json:"user_id" validate:"required"`
	// Items are validated individually during processing so one malformed
	// submission cannot reject the rest of the batch.
	Submissions []SubmissionCreateRequest `json:"submissions" validate:"required,min=1,max=100"`
}

// ExtensionSyncItemResult reports what happened to one synced submission.
type ExtensionSyncItemResult struct {
	SubmissionID uint              `json:"submission_id,omitempty"`
	ProblemTitle string            `json:"problem_title,omitempty"`
	Stored       bool              `json:"stored"`
	Flagged      bool              `json:"flagged"`
	Error        string            `json:"error,omitempty"`
	Validation   ValidationOutcome `json:"validation"`
}

// ExtensionSyncResponse summarizes a sync batch.
type ExtensionSyncResponse struct {
	Synced    int                       `json:"synced"`
	Failed    int                       `json:"failed"`
	Validated int                       `json:"validated"`
	Results   []ExtensionSyncItemResult `json:"results"`
}
