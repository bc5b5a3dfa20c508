package notification

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// Message is one "payslip ready" notice addressed to an employee.
type Message struct {
	Channel   string
	Recipient string
	Subject   string
	Body      string
	PayslipID string
	AuditID   string
}
