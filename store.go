package rbac

import (
	"context"

	"github.com/fernandezvara/dbkit"
	"github.com/google/uuid"
)

// Store is a database-backed AuditSink. It persists every entry to the
// rbac_audit_log table and answers filtered queries over the trail.
//
// The Store does not own the connection: callers hand it a dbkit database
// (or transaction) and keep control of its lifecycle.
//
// Example:
//
//	db, _ := dbkit.New(dbkit.Config{URL: "postgres://..."})
//	store := rbac.NewStore(db)
//	_, _ = db.Migrate(ctx, store.Migrations())
//	authz, _ := rbac.New(cfg, rbac.WithAuditSink(store))
type Store struct {
	db dbkit.IDB
}

// NewStore creates an audit store on top of an existing database handle.
func NewStore(db dbkit.IDB) *Store {
	return &Store{db: db}
}

// Migrations returns the database migrations required by the Store.
// Run them with dbkit's migrator before recording entries.
func (s *Store) Migrations() []dbkit.Migration {
	return []dbkit.Migration{
		{
			ID:          "rbac-001",
			Description: "Create rbac_audit_log table",
			SQL: `
                CREATE TABLE IF NOT EXISTS rbac_audit_log (
                    id UUID PRIMARY KEY,
                    timestamp TIMESTAMPTZ NOT NULL DEFAULT current_timestamp,
                    actor_id TEXT,
                    action TEXT NOT NULL,
                    role TEXT,
                    resource TEXT,
                    permissions TEXT[],
                    allowed BOOLEAN NOT NULL DEFAULT false,
                    ip_address TEXT,
                    user_agent TEXT,
                    request_id TEXT
                )`,
		},
		{
			ID:          "rbac-002",
			Description: "Index rbac_audit_log by actor and time",
			SQL: `
                CREATE INDEX IF NOT EXISTS idx_rbac_audit_log_actor
                    ON rbac_audit_log (actor_id, timestamp DESC)`,
		},
	}
}

// Record implements AuditSink.
func (s *Store) Record(ctx context.Context, entry AuditEntry) error {
	record := toRecord(entry)
	record.ID = uuid.NewString()

	result, err := s.db.NewInsert().Model(record).Exec(ctx)
	if err := dbkit.WithErr(result, err, "RecordAuditEntry").Err(); err != nil {
		return NewError(ErrAuditError, "failed to persist audit entry")
	}
	return nil
}

// Query retrieves audit entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter AuditFilter) ([]AuditEntry, error) {
	var records []AuditRecord
	q := s.db.NewSelect().Model(&records)
	if filter.ActorID != "" {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Resource != "" {
		q = q.Where("resource = ?", filter.Resource)
	}
	if !filter.Since.IsZero() {
		q = q.Where("timestamp >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("timestamp <= ?", filter.Until)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 100 // Default limit
	}
	q = q.Limit(limit)

	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	q = q.Order("timestamp DESC")
	if err := dbkit.WithErr1(q.Scan(ctx), "QueryAuditLog").Err(); err != nil {
		return nil, err
	}

	entries := make([]AuditEntry, 0, len(records))
	for i := range records {
		entries = append(entries, records[i].toEntry())
	}
	return entries, nil
}

// Count returns the number of audit entries for an actor. A convenience
// for retention and rate checks.
func (s *Store) Count(ctx context.Context, actorID string) (int, error) {
	q := s.db.NewSelect().Model((*AuditRecord)(nil))
	if actorID != "" {
		q = q.Where("actor_id = ?", actorID)
	}
	count, err := q.Count(ctx)
	if err := dbkit.WithErr1(err, "CountAuditLog").Err(); err != nil {
		return 0, err
	}
	return count, nil
}

// Ping verifies the underlying database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if db, ok := s.db.(*dbkit.DBKit); ok {
		return db.PingContext(ctx)
	}
	return nil
}
