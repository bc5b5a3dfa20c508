package consumer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Philgatex/huashang-hais-app/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumers need.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

type RunCompletedHandler interface {
	PayrollRunCompleted(ctx context.Context, event events.PayrollRunCompletedEvent) error
}

// RetryPolicy bounds how often a failing message is handed to the handler
// before the consumer gives up on it. The wait doubles after every attempt.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, Backoff: time.Second, MaxBackoff: 30 * time.Second}
}

// ConsumePayrollRunCompleted blocks until ctx is cancelled.
//
// Undecodable messages are committed and dropped. A handler failure is retried
// in place, so no later offset of the partition is committed past it. Once the
// attempts run out the message is logged and committed. If ctx ends while a
// message is still failing it stays uncommitted and the group redelivers it.
func ConsumePayrollRunCompleted(
	ctx context.Context,
	reader MessageReader,
	handler RunCompletedHandler,
	logger *zap.Logger,
	retry RetryPolicy,
) {
	if logger == nil {
		logger = zap.L()
	}
	log := logger.Named("kafka.consumer.payroll_run_completed")
	log.Info("payroll run completed consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("payroll run completed consumer stopped")
				return
			}
			log.Error("fetch payroll run message failed", zap.Error(err))
			continue
		}

		var event events.PayrollRunCompletedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode payroll run completed event failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := handleWithRetry(ctx, handler, event, retry, log.With(
			zap.String("audit_id", event.AuditID),
			zap.String("request_id", headerValue(msg, "request_id")),
			zap.Int64("offset", msg.Offset),
		)); err != nil {
			if ctx.Err() != nil {
				log.Info("payroll run completed consumer stopped", zap.Int64("uncommitted_offset", msg.Offset))
				return
			}
			log.Error("payroll run completed event dropped after retries",
				zap.String("audit_id", event.AuditID),
				zap.Int("attempts", max(retry.MaxAttempts, 1)),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit payroll run message failed", zap.Error(err))
			continue
		}

		log.Info("payroll run completed handled",
			zap.String("audit_id", event.AuditID),
			zap.String("period", event.Period),
			zap.Int("payslips", len(event.Payslips)),
		)
	}
}

func handleWithRetry(
	ctx context.Context,
	handler RunCompletedHandler,
	event events.PayrollRunCompletedEvent,
	retry RetryPolicy,
	log *zap.Logger,
) error {
	attempts := max(retry.MaxAttempts, 1)
	wait := retry.Backoff

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = handler.PayrollRunCompleted(ctx, event); err == nil {
			return nil
		}
		log.Warn("handle payroll run completed failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
		if retry.MaxBackoff > 0 && wait > retry.MaxBackoff {
			wait = retry.MaxBackoff
		}
	}
	return err
}

func headerValue(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
