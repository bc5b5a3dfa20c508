package consumer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Philgatex/huashang-hais-app/internal/events"
	"github.com/Philgatex/huashang-hais-app/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// scriptedReader replays msgs, then cancels the consumer.
type scriptedReader struct {
	msgs      []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		return kafkago.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *scriptedReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

// recordingHandler fails an audit as many times as failures says, or always
// when the count is negative.
type recordingHandler struct {
	seen     []string
	failures map[string]int
	onFail   func()
}

func (h *recordingHandler) PayrollRunCompleted(ctx context.Context, event events.PayrollRunCompletedEvent) error {
	h.seen = append(h.seen, event.AuditID)
	n := h.failures[event.AuditID]
	if n == 0 {
		return nil
	}
	if n > 0 {
		h.failures[event.AuditID] = n - 1
	}
	if h.onFail != nil {
		h.onFail()
	}
	return errors.New("sender down")
}

func fastRetry(attempts int) consumer.RetryPolicy {
	return consumer.RetryPolicy{MaxAttempts: attempts, Backoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestConsumePayrollRunCompleted(t *testing.T) {
	t.Run("transient failure is retried before the offset moves", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reader := &scriptedReader{
			cancel: cancel,
			msgs: []kafkago.Message{
				{Offset: 1, Value: []byte(`{"audit_id":"audit-1","period":"June 2024","payslips":[]}`)},
				{Offset: 2, Value: []byte(`not json`)},
				{Offset: 3, Value: []byte(`{"audit_id":"audit-3"}`), Headers: []kafkago.Header{{Key: "request_id", Value: []byte("req-3")}}},
				{Offset: 4, Value: []byte(`{"audit_id":"audit-4"}`)},
			},
		}
		handler := &recordingHandler{failures: map[string]int{"audit-3": 1}}

		consumer.ConsumePayrollRunCompleted(ctx, reader, handler, zap.NewNop(), fastRetry(3))

		assert.Equal(t, []string{"audit-1", "audit-3", "audit-3", "audit-4"}, handler.seen)
		assert.Equal(t, []int64{1, 2, 3, 4}, reader.committed)
	})

	t.Run("exhausted retries drop the message and continue", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reader := &scriptedReader{
			cancel: cancel,
			msgs: []kafkago.Message{
				{Offset: 4, Value: []byte(`{"audit_id":"audit-4"}`)},
				{Offset: 5, Value: []byte(`{"audit_id":"audit-5"}`)},
			},
		}
		handler := &recordingHandler{failures: map[string]int{"audit-4": -1}}

		consumer.ConsumePayrollRunCompleted(ctx, reader, handler, zap.NewNop(), fastRetry(3))

		assert.Equal(t, []string{"audit-4", "audit-4", "audit-4", "audit-5"}, handler.seen)
		assert.Equal(t, []int64{4, 5}, reader.committed)
	})

	t.Run("shutdown while retrying leaves the offset uncommitted", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		reader := &scriptedReader{
			cancel: cancel,
			msgs: []kafkago.Message{
				{Offset: 7, Value: []byte(`{"audit_id":"audit-7"}`)},
				{Offset: 8, Value: []byte(`{"audit_id":"audit-8"}`)},
			},
		}
		handler := &recordingHandler{failures: map[string]int{"audit-7": -1}, onFail: cancel}

		consumer.ConsumePayrollRunCompleted(ctx, reader, handler, zap.NewNop(),
			consumer.RetryPolicy{MaxAttempts: 5, Backoff: time.Hour})

		assert.Equal(t, []string{"audit-7"}, handler.seen)
		assert.Empty(t, reader.committed)
	})
}
