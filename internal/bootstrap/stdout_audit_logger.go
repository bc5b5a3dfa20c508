package bootstrap

import (
	"context"
	"time"

	"github.com/Philgatex/huashang-hais-app/internal/shared/clock"

	"go.uber.org/zap"
)

// StdoutAuditLogger writes audit entries through the named "audit" logger.
type StdoutAuditLogger struct {
	logger *zap.Logger
	clock  clock.Clock
}

func NewStdoutAuditLogger(logger *zap.Logger, clk clock.Clock) *StdoutAuditLogger {
	if logger == nil {
		logger = zap.L()
	}
	if clk == nil {
		clk = clock.System()
	}
	return &StdoutAuditLogger{logger: logger.Named("audit"), clock: clk}
}

func (l *StdoutAuditLogger) Log(ctx context.Context, entry AuditLog) {
	l.logger.Info("audit event",
		zap.String("timestamp", l.clock.Now().Format(time.RFC3339)),
		zap.String("action", entry.Action),
		zap.String("message", entry.Message),
		zap.Any("meta", entry.Meta),
	)
}
