package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/Philgatex/huashang-hais-app/internal/events"

	"go.uber.org/zap"
)

type Service interface {
	PayrollRunCompleted(ctx context.Context, event events.PayrollRunCompletedEvent) error
}

type service struct {
	sender Sender
	logger *zap.Logger
}

func NewService(sender Sender, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{sender: sender, logger: l}
}

// PayrollRunCompleted sends one notice per payslip. Email wins over SMS;
// employees with neither are logged and skipped. Send failures are joined so
// the caller can leave the message uncommitted.
func (s *service) PayrollRunCompleted(ctx context.Context, event events.PayrollRunCompletedEvent) error {
	var errs []error
	sent := 0

	for _, p := range event.Payslips {
		msg, ok := payslipReady(event, p)
		if !ok {
			s.logger.Warn("employee has no contact details, skipping notice",
				zap.String("audit_id", event.AuditID),
				zap.String("employee_id", p.EmployeeID),
			)
			continue
		}

		if err := s.sender.Send(ctx, msg); err != nil {
			s.logger.Error("send payslip notice failed",
				zap.String("payslip_id", p.PayslipID),
				zap.String("channel", msg.Channel),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("payslip %s: %w", p.PayslipID, err))
			continue
		}
		sent++
	}

	s.logger.Info("payroll run notices processed",
		zap.String("audit_id", event.AuditID),
		zap.String("period", event.Period),
		zap.Int("sent", sent),
		zap.Int("failed", len(errs)),
	)
	return errors.Join(errs...)
}

func payslipReady(event events.PayrollRunCompletedEvent, p events.PayslipNotice) (Message, bool) {
	msg := Message{
		Subject:   fmt.Sprintf("Your payslip for %s is ready", event.Period),
		PayslipID: p.PayslipID,
		AuditID:   event.AuditID,
	}

	switch {
	case p.Email != "":
		msg.Channel = ChannelEmail
		msg.Recipient = p.Email
		msg.Body = fmt.Sprintf("Hello %s,\n\nYour payslip for %s has been generated. Net pay: %s.\nPayment method: %s.",
			p.EmployeeName, event.Period, p.NetPay.StringFixed(2), p.PaymentMethod)
	case p.Phone != "":
		msg.Channel = ChannelSMS
		msg.Recipient = p.Phone
		msg.Body = fmt.Sprintf("%s payslip ready. Net pay %s.", event.Period, p.NetPay.StringFixed(2))
	default:
		return Message{}, false
	}
	return msg, true
}
