package kafka_test

import (
	"context"
	"database/sql/driver"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Philgatex/huashang-hais-app/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// reasonArg accepts a valid UTF-8 string of exactly want characters.
type reasonArg struct {
	t    *testing.T
	want int
}

func (a reasonArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	assert.True(a.t, utf8.ValidString(s), "truncated reason must stay valid UTF-8")
	return utf8.RuneCountInString(s) == a.want
}

func TestOutboxRepository_MarkFailed(t *testing.T) {
	t.Run("multi-byte reason is cut on a character boundary", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		// one ASCII byte shifts every two-byte rune off the 500 byte mark
		reason := "x" + strings.Repeat("é", 600)
		mock.ExpectExec("UPDATE outbox_events").
			WithArgs("ob-1", kafka.OutboxStatusFailed, reasonArg{t: t, want: 500}).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = kafka.NewOutboxRepository(db).MarkFailed(context.Background(), "ob-1", reason)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("short reason is kept", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE outbox_events").
			WithArgs("ob-2", kafka.OutboxStatusFailed, "kafka: leader not available ✗").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = kafka.NewOutboxRepository(db).MarkFailed(context.Background(), "ob-2", "kafka: leader not available ✗")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
