package producer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Philgatex/huashang-hais-app/internal/messaging/kafka"
	"github.com/Philgatex/huashang-hais-app/internal/messaging/kafka/producer"

	"github.com/DATA-DOG/go-sqlmock"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeWriter struct {
	written []kafkago.Message
	failFor map[string]error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		if err, ok := f.failFor[string(m.Key)]; ok {
			return err
		}
		f.written = append(f.written, m)
	}
	return nil
}

var outboxColumns = []string{
	"id", "request_id", "aggregate_type", "aggregate_id", "event_type",
	"topic", "payload", "status", "retry_count", "next_retry_at",
}

func TestProcessPending(t *testing.T) {
	now := time.Date(2024, time.June, 28, 9, 30, 0, 0, time.UTC)

	t.Run("publishes and marks rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM outbox_events").
			WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 50).
			WillReturnRows(sqlmock.NewRows(outboxColumns).
				AddRow("ob-1", "req-1", "payroll_audit", "audit-1", "payroll.run.completed", "hr.payroll.run.completed.v1", []byte(`{"audit_id":"audit-1"}`), "pending", 0, now).
				AddRow("ob-2", "", "payroll_audit", "audit-2", "payroll.run.completed", "hr.payroll.run.completed.v1", []byte(`{"audit_id":"audit-2"}`), "failed", 2, now))
		mock.ExpectExec("UPDATE outbox_events").
			WithArgs("ob-1", kafka.OutboxStatusSent).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE outbox_events").
			WithArgs("ob-2", kafka.OutboxStatusFailed, "broker unavailable").
			WillReturnResult(sqlmock.NewResult(0, 1))

		writer := &fakeWriter{failFor: map[string]error{"audit-2": errors.New("broker unavailable")}}

		sent, err := producer.ProcessPending(context.Background(), kafka.NewOutboxRepository(db), writer, zap.NewNop())

		assert.NoError(t, err)
		assert.Equal(t, 1, sent)
		if assert.Len(t, writer.written, 1) {
			msg := writer.written[0]
			assert.Equal(t, "hr.payroll.run.completed.v1", msg.Topic)
			assert.Equal(t, "audit-1", string(msg.Key))
			assert.Contains(t, msg.Headers, kafkago.Header{Key: "request_id", Value: []byte("req-1")})
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty outbox", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM outbox_events").WillReturnRows(sqlmock.NewRows(outboxColumns))

		writer := &fakeWriter{}
		sent, err := producer.ProcessPending(context.Background(), kafka.NewOutboxRepository(db), writer, zap.NewNop())

		assert.NoError(t, err)
		assert.Zero(t, sent)
		assert.Empty(t, writer.written)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("FROM outbox_events").WillReturnError(errors.New("relation does not exist"))

		_, err = producer.ProcessPending(context.Background(), kafka.NewOutboxRepository(db), &fakeWriter{}, zap.NewNop())

		assert.Error(t, err)
	})
}
