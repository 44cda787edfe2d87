package rbac

import (
	"context"
	"log/slog"
	"time"
)

// AuditAction is the kind of event recorded in the audit trail.
type AuditAction string

const (
	AuditGranted       AuditAction = "granted"
	AuditRevoked       AuditAction = "revoked"
	AuditRoleAdded     AuditAction = "role_added"
	AuditRoleRemoved   AuditAction = "role_removed"
	AuditHierarchySet  AuditAction = "hierarchy_set"
	AuditConfigUpdated AuditAction = "config_updated"
	AuditAccessChecked AuditAction = "access_checked"
)

// AuditEntry is one audit trail event. Request metadata fields are filled
// from context by the middleware; mutation-driven entries carry only the
// change itself.
type AuditEntry struct {
	// Who triggered the event, when known.
	ActorID string

	// What happened.
	Action AuditAction

	// The subject of the change or check.
	Role        string
	Resource    string
	Permissions []string

	// Outcome of an access check (only meaningful for AuditAccessChecked).
	Allowed bool

	// Request metadata for forensics.
	IPAddress string
	UserAgent string
	RequestID string

	At time.Time
}

// AuditSink receives audit entries. Implementations must be safe for
// concurrent use. A sink error never fails the operation that produced the
// entry; the Authorizer logs and drops it.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// nopSink is the default sink. It discards everything.
type nopSink struct{}

func (nopSink) Record(context.Context, AuditEntry) error { return nil }

// LogSink writes audit entries to a structured logger. It is the
// lightweight alternative to the database-backed Store.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink creates a sink writing to the given logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LogSink{logger: logger}
}

// Record implements AuditSink.
func (s *LogSink) Record(ctx context.Context, entry AuditEntry) error {
	attrs := []any{
		"action", string(entry.Action),
		"at", entry.At,
	}
	if entry.ActorID != "" {
		attrs = append(attrs, "actor_id", entry.ActorID)
	}
	if entry.Role != "" {
		attrs = append(attrs, "role", entry.Role)
	}
	if entry.Resource != "" {
		attrs = append(attrs, "resource", entry.Resource)
	}
	if len(entry.Permissions) > 0 {
		attrs = append(attrs, "permissions", entry.Permissions)
	}
	if entry.Action == AuditAccessChecked {
		attrs = append(attrs, "allowed", entry.Allowed)
	}
	if entry.RequestID != "" {
		attrs = append(attrs, "request_id", entry.RequestID)
	}
	if entry.IPAddress != "" {
		attrs = append(attrs, "ip_address", entry.IPAddress)
	}
	s.logger.InfoContext(ctx, "rbac audit", attrs...)
	return nil
}
