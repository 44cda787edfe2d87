package rbac

import "time"

// AuditFilter provides options for filtering audit trail queries.
type AuditFilter struct {
	// Filter by actor who triggered the event
	ActorID string

	// Filter by event type (AuditGranted, AuditRevoked, ...)
	Action AuditAction

	// Filter by role involved
	Role string

	// Filter by resource involved
	Resource string

	// Filter by time range
	Since time.Time
	Until time.Time

	// Pagination
	Limit  int
	Offset int
}

// NewAuditFilter creates an AuditFilter with default values.
func NewAuditFilter() AuditFilter {
	return AuditFilter{
		Limit: 100,
	}
}
