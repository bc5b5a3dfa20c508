package notification

import (
	"context"

	"go.uber.org/zap"
)

//go:generate mockgen -source=notification_sender.go -destination=mock/notification_sender_mock.go -package=mock
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type logSender struct {
	logger *zap.Logger
}

// NewLogSender writes every message to the log instead of a gateway.
func NewLogSender(logger *zap.Logger) Sender {
	if logger == nil {
		logger = zap.L()
	}
	return &logSender{logger: logger.Named("notification.sender")}
}

func (s *logSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info("notification sent",
		zap.String("channel", msg.Channel),
		zap.String("recipient", msg.Recipient),
		zap.String("subject", msg.Subject),
		zap.String("payslip_id", msg.PayslipID),
		zap.String("audit_id", msg.AuditID),
	)
	return nil
}
