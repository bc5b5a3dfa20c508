package bootstrap

import "context"

// AuditLog is a process lifecycle record written outside the request path.
type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
