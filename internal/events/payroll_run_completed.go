package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PayrollRunCompletedTopic = "hr.payroll.run.completed.v1"
	PayrollRunCompletedType  = "payroll.run.completed"
)

// PayslipNotice carries what a notifier needs to tell one employee their
// payslip is ready.
type PayslipNotice struct {
	PayslipID     string          `json:"payslip_id"`
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  string          `json:"employee_name"`
	Email         string          `json:"email,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	NetPay        decimal.Decimal `json:"net_pay"`
}

type PayrollRunCompletedEvent struct {
	EventType       string          `json:"event_type"`
	AuditID         string          `json:"audit_id"`
	Reference       string          `json:"reference"`
	Period          string          `json:"period"`
	ClientID        string          `json:"client_id,omitempty"`
	ExecutedBy      string          `json:"executed_by"`
	TotalNetPay     decimal.Decimal `json:"total_net_pay"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	Payslips        []PayslipNotice `json:"payslips"`
	OccurredAt      time.Time       `json:"occurred_at"`
}
