package approval

type SubmitApprovalRequest struct {
	Type        string  `json:"type" binding:"required"`
	Details     string  `json:"details" binding:"required"`
	ReferenceID *string `json:"reference_id"`
}

type DecisionRequest struct {
	Note string `json:"note" binding:"max=1000"`
}

type ApprovalResponse struct {
	ID              string  `json:"id"`
	Type            string  `json:"type"`
	SubmittedBy     string  `json:"submitted_by"`
	SubmittedByName string  `json:"submitted_by_name"`
	ReferenceID     *string `json:"reference_id,omitempty"`
	Details         string  `json:"details"`
	Status          string  `json:"status"`
	DateSubmitted   string  `json:"date_submitted"`
	DecidedBy       *string `json:"decided_by,omitempty"`
	DecidedAt       *string `json:"decided_at,omitempty"`
	DecisionNote    *string `json:"decision_note,omitempty"`
}

// Viewer is the caller as seen by the approval center.
type Viewer struct {
	Role       string
	UserID     string
	EmployeeID string
}

// ActorID prefers the employee profile so decisions and submissions line up
// with the roster.
func (v Viewer) ActorID() string {
	if v.EmployeeID != "" {
		return v.EmployeeID
	}
	return v.UserID
}
