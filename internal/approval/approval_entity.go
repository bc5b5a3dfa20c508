package approval

import "time"

const (
	TypeLeaveRequest = "Leave Request"
	TypePayrollBatch = "Payroll Batch"
	TypeExpenseClaim = "Expense Claim"

	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// ApprovalRequest is one item of the approval center. SubmitterID is the
// employee id of the requester, or the user id for accounts without one.
type ApprovalRequest struct {
	ID            string  `gorm:"type:varchar(64);primaryKey"`
	Type          string  `gorm:"type:varchar(30);not null;index:idx_approvals_status_type"`
	SubmitterID   string  `gorm:"type:varchar(64);not null;index"`
	SubmitterName string  `gorm:"type:varchar(160)"`
	ReferenceID   *string `gorm:"type:varchar(64)"`
	Details       string  `gorm:"type:text;not null"`

	Status       string     `gorm:"type:varchar(20);not null;default:'Pending';index:idx_approvals_status_type"`
	DecidedBy    *string    `gorm:"type:varchar(64)"`
	DecisionNote *string    `gorm:"type:text"`
	DecidedAt    *time.Time

	SubmittedAt time.Time `gorm:"not null"`
	UpdatedAt   time.Time
}
