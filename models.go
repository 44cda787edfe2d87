package rbac

import (
	"time"

	"github.com/uptrace/bun"
)

// AuditRecord is the persisted form of an AuditEntry.
type AuditRecord struct {
	bun.BaseModel `bun:"table:rbac_audit_log,alias:al"`

	ID        string    `bun:"id,pk"`
	Timestamp time.Time `bun:"timestamp,notnull,default:current_timestamp"`

	// Who triggered the event (may be empty for programmatic mutations).
	ActorID string `bun:"actor_id"`

	// What happened.
	Action string `bun:"action,notnull"`

	// The subject of the change or check.
	Role        string   `bun:"role"`
	Resource    string   `bun:"resource"`
	Permissions []string `bun:"permissions,type:text[]"`

	// Outcome of an access check.
	Allowed bool `bun:"allowed"`

	// Request metadata for forensics.
	IPAddress string `bun:"ip_address"`
	UserAgent string `bun:"user_agent"`
	RequestID string `bun:"request_id"`
}

// toRecord converts an AuditEntry to its persisted form. The ID is
// assigned by the Store at insert time.
func toRecord(e AuditEntry) *AuditRecord {
	ts := e.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &AuditRecord{
		Timestamp:   ts,
		ActorID:     e.ActorID,
		Action:      string(e.Action),
		Role:        e.Role,
		Resource:    e.Resource,
		Permissions: e.Permissions,
		Allowed:     e.Allowed,
		IPAddress:   e.IPAddress,
		UserAgent:   e.UserAgent,
		RequestID:   e.RequestID,
	}
}

// toEntry converts a persisted record back to an AuditEntry.
func (r *AuditRecord) toEntry() AuditEntry {
	return AuditEntry{
		ActorID:     r.ActorID,
		Action:      AuditAction(r.Action),
		Role:        r.Role,
		Resource:    r.Resource,
		Permissions: r.Permissions,
		Allowed:     r.Allowed,
		IPAddress:   r.IPAddress,
		UserAgent:   r.UserAgent,
		RequestID:   r.RequestID,
		At:          r.Timestamp,
	}
}
