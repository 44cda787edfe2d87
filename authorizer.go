package rbac

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Default sizing for the decision cache.
const (
	DefaultCacheSize = 1000
	DefaultCacheTTL  = time.Minute
)

// Authorizer is the public surface of the engine: permission queries for
// roles and users, dynamic configuration mutation, and the middleware
// adapter factory.
//
// Reads and writes may race freely: writes clone the configuration,
// validate the clone, swap it in atomically and then invalidate the
// decision cache, so a concurrent reader sees a consistent snapshot.
type Authorizer struct {
	mu   sync.RWMutex
	snap *snapshot

	cache  *decisionCache
	strict bool
	logger *slog.Logger
	audit  AuditSink
	now    func() time.Time
}

// Option configures an Authorizer at construction.
type Option func(*settings)

type settings struct {
	cacheEnabled bool
	cacheSize    int
	cacheTTL     time.Duration
	strict       bool
	logger       *slog.Logger
	audit        AuditSink
	now          func() time.Time
}

// WithCache sizes the decision cache. maxSize must be positive and ttl
// greater than zero; New fails otherwise.
func WithCache(maxSize int, ttl time.Duration) Option {
	return func(s *settings) {
		s.cacheEnabled = true
		s.cacheSize = maxSize
		s.cacheTTL = ttl
	}
}

// WithoutCache disables the decision cache entirely. Every query resolves
// against the configuration.
func WithoutCache() Option {
	return func(s *settings) {
		s.cacheEnabled = false
	}
}

// WithStrict makes queries for unknown roles fail with ErrUnknownRole
// instead of resolving to a logged deny. Unknown resources and permissions
// are unaffected: those are routine "not granted" outcomes either way.
func WithStrict() Option {
	return func(s *settings) {
		s.strict = true
	}
}

// WithLogger sets the structured logger. The default discards everything;
// there is no package-level logger state.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithAuditSink sets the destination for audit records emitted by mutation
// operations and, when enabled, the middleware. See LogSink and Store.
func WithAuditSink(sink AuditSink) Option {
	return func(s *settings) {
		if sink != nil {
			s.audit = sink
		}
	}
}

// WithClock overrides the time source used for cache expiry and audit
// timestamps. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an Authorizer from a configuration. The configuration is
// validated and deep-copied; the caller's maps are never aliased.
//
// Example:
//
//	authz, err := rbac.New(cfg,
//	    rbac.WithCache(500, 30*time.Second),
//	    rbac.WithStrict(),
//	    rbac.WithLogger(slog.Default()),
//	)
func New(cfg Config, opts ...Option) (*Authorizer, error) {
	s := settings{
		cacheEnabled: true,
		cacheSize:    DefaultCacheSize,
		cacheTTL:     DefaultCacheTTL,
		logger:       slog.New(slog.DiscardHandler),
		audit:        nopSink{},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s.cacheEnabled && (s.cacheSize <= 0 || s.cacheTTL <= 0) {
		return nil, NewError(ErrInvalidConfig, "cache size and ttl must be positive")
	}

	a := &Authorizer{
		snap:   newSnapshot(cfg.clone(), map[string][]string{}),
		strict: s.strict,
		logger: s.logger,
		audit:  s.audit,
		now:    s.now,
	}
	if s.cacheEnabled {
		a.cache = newDecisionCache(s.cacheSize, s.cacheTTL, s.now)
	}
	return a, nil
}

// view returns the current snapshot together with the cache version active
// at the moment the snapshot was read. Results resolved against this
// snapshot are stamped with that version, so a purge racing the resolution
// retires them even if they land in the cache afterwards.
func (a *Authorizer) view() (*snapshot, uint64) {
	version := a.cache.currentVersion()
	a.mu.RLock()
	snap := a.snap
	a.mu.RUnlock()
	return snap, version
}

// Can reports whether a role holds a permission on a resource, directly or
// through hierarchy inheritance.
//
// Malformed identifiers fail with ErrInvalidInput. An unknown role fails
// with ErrUnknownRole in strict mode and resolves to a logged false
// otherwise. Unknown resources and permissions are always a plain false.
func (a *Authorizer) Can(role, resource, permission string) (bool, error) {
	if err := validateTriple(role, resource, permission); err != nil {
		a.logger.Warn("rejected malformed identifier",
			"role", role, "resource", resource, "permission", permission)
		return false, err
	}

	snap, version := a.view()
	return a.resolve(snap, version, role, resource, permission, map[string]bool{}, true)
}

// GetPermissions returns the union of a role's direct permissions on a
// resource and every permission inherited through the hierarchy for the
// same resource, sorted, with duplicates collapsed.
func (a *Authorizer) GetPermissions(role, resource string) ([]string, error) {
	if err := ValidateIdentifier(role, "role"); err != nil {
		return nil, err
	}
	if err := ValidateIdentifier(resource, "resource"); err != nil {
		return nil, err
	}

	snap, _ := a.view()
	if _, ok := snap.config.Roles[role]; !ok {
		if a.strict {
			return nil, NewError(ErrUnknownRole, "role is not defined").WithRole(role)
		}
		a.logger.Warn("permission listing for unknown role", "role", role)
		return []string{}, nil
	}

	set := make(map[string]bool)
	snap.permissionsFor(role, resource, map[string]bool{}, set)
	return sortedKeys(set), nil
}

// GetResources returns the union of a role's directly configured resources
// and every resource reachable through hierarchy parents, sorted.
func (a *Authorizer) GetResources(role string) ([]string, error) {
	if err := ValidateIdentifier(role, "role"); err != nil {
		return nil, err
	}

	snap, _ := a.view()
	if _, ok := snap.config.Roles[role]; !ok {
		if a.strict {
			return nil, NewError(ErrUnknownRole, "role is not defined").WithRole(role)
		}
		a.logger.Warn("resource listing for unknown role", "role", role)
		return []string{}, nil
	}

	set := make(map[string]bool)
	snap.resourcesFor(role, map[string]bool{}, set)
	return sortedKeys(set), nil
}

// GetRoles returns all configured role names, sorted.
func (a *Authorizer) GetRoles() []string {
	snap, _ := a.view()
	roles := make([]string, 0, len(snap.config.Roles))
	for role := range snap.config.Roles {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// GetConfig returns a defensive deep copy of the current configuration.
// Mutating the returned value has no effect on the Authorizer.
func (a *Authorizer) GetConfig() Config {
	snap, _ := a.view()
	return snap.config.clone()
}

// GetRoleHierarchy returns a deep copy of the current hierarchy mapping.
func (a *Authorizer) GetRoleHierarchy() map[string][]string {
	snap, _ := a.view()
	return cloneHierarchy(snap.hierarchy)
}

// GetCacheStats reports whether the decision cache is enabled and how many
// entries it currently holds.
func (a *Authorizer) GetCacheStats() CacheStats {
	return a.cache.stats()
}

// ClearCache drops every cached decision and bumps the cache version so
// that in-flight resolutions cannot write stale entries back.
func (a *Authorizer) ClearCache() {
	a.cache.purge()
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
