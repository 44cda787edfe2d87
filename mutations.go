package rbac

import (
	"context"
)

// Mutations never edit the live configuration in place. Each one clones the
// current state, applies the change to the clone, swaps the snapshot
// pointer under the write lock and then purges the decision cache.

// SetRoleHierarchy replaces the role hierarchy wholesale. The mapping goes
// from child role to its parent roles in inheritance-lookup order.
//
// Every identifier is validated and the graph proven acyclic before
// anything is applied; a rejected hierarchy leaves the previous one fully
// in place. Parents that are not configured roles are accepted and resolve
// to "no permissions" at query time.
func (a *Authorizer) SetRoleHierarchy(hierarchy map[string][]string) error {
	for child, parents := range hierarchy {
		if err := ValidateIdentifier(child, "role"); err != nil {
			a.logger.Warn("rejected malformed hierarchy role", "role", child)
			return err
		}
		for _, parent := range parents {
			if err := ValidateIdentifier(parent, "parent role"); err != nil {
				a.logger.Warn("rejected malformed hierarchy parent", "role", child, "parent", parent)
				return err
			}
		}
	}
	if err := validateHierarchy(hierarchy); err != nil {
		return err
	}

	a.mu.Lock()
	a.snap = newSnapshot(a.snap.config, cloneHierarchy(hierarchy))
	a.mu.Unlock()
	a.cache.purge()

	a.record(AuditEntry{Action: AuditHierarchySet})
	return nil
}

// UpdateConfig replaces the entire role configuration. The incoming
// configuration is validated and deep-copied before the swap; the existing
// hierarchy is kept.
func (a *Authorizer) UpdateConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.mu.Lock()
	a.snap = newSnapshot(cfg.clone(), a.snap.hierarchy)
	a.mu.Unlock()
	a.cache.purge()

	a.record(AuditEntry{Action: AuditConfigUpdated})
	return nil
}

// Grant merges permissions into a role's existing set for a resource
// (union, not replace). The role must already exist.
func (a *Authorizer) Grant(role, resource string, permissions ...string) error {
	if err := ValidateIdentifier(role, "role"); err != nil {
		return err
	}
	if err := ValidateIdentifier(resource, "resource"); err != nil {
		return err
	}
	for _, perm := range permissions {
		if err := ValidateIdentifier(perm, "permission"); err != nil {
			return err
		}
	}

	a.mu.Lock()
	cfg := a.snap.config.clone()
	def, ok := cfg.Roles[role]
	if !ok {
		a.mu.Unlock()
		return NewError(ErrUnknownRole, "cannot grant to an undefined role").WithRole(role)
	}
	if def.Grants == nil {
		def.Grants = make(map[string][]string)
	}
	def.Grants[resource] = dedupe(append(def.Grants[resource], permissions...))
	cfg.Roles[role] = def
	a.snap = newSnapshot(cfg, a.snap.hierarchy)
	a.mu.Unlock()
	a.cache.purge()

	a.record(AuditEntry{
		Action:      AuditGranted,
		Role:        role,
		Resource:    resource,
		Permissions: dedupe(permissions),
	})
	return nil
}

// Revoke removes permissions from a role's set for a resource. With no
// permissions given it clears the whole set, leaving an empty set rather
// than deleting the resource key; "no permissions" and "resource not
// mentioned" answer queries identically. A missing role or resource is a
// no-op, not an error.
func (a *Authorizer) Revoke(role, resource string, permissions ...string) error {
	if err := ValidateIdentifier(role, "role"); err != nil {
		return err
	}
	if err := ValidateIdentifier(resource, "resource"); err != nil {
		return err
	}
	for _, perm := range permissions {
		if err := ValidateIdentifier(perm, "permission"); err != nil {
			return err
		}
	}

	a.mu.Lock()
	cfg := a.snap.config.clone()
	if def, ok := cfg.Roles[role]; ok {
		if _, ok := def.Grants[resource]; ok {
			if len(permissions) == 0 {
				def.Grants[resource] = []string{}
			} else {
				drop := make(map[string]bool, len(permissions))
				for _, p := range permissions {
					drop[p] = true
				}
				kept := make([]string, 0, len(def.Grants[resource]))
				for _, p := range def.Grants[resource] {
					if !drop[p] {
						kept = append(kept, p)
					}
				}
				def.Grants[resource] = kept
			}
			cfg.Roles[role] = def
			a.snap = newSnapshot(cfg, a.snap.hierarchy)
		}
	}
	a.mu.Unlock()
	a.cache.purge()

	a.record(AuditEntry{
		Action:      AuditRevoked,
		Role:        role,
		Resource:    resource,
		Permissions: dedupe(permissions),
	})
	return nil
}

// AddRole installs a role definition, replacing any existing role of the
// same name. The definition is validated and deep-copied on ingestion.
func (a *Authorizer) AddRole(role string, def RoleDefinition) error {
	if err := ValidateIdentifier(role, "role"); err != nil {
		return err
	}
	for resource, perms := range def.Grants {
		if err := ValidateIdentifier(resource, "resource"); err != nil {
			return err
		}
		for _, perm := range perms {
			if err := ValidateIdentifier(perm, "permission"); err != nil {
				return err
			}
		}
	}

	a.mu.Lock()
	cfg := a.snap.config.clone()
	cfg.Roles[role] = def.clone()
	a.snap = newSnapshot(cfg, a.snap.hierarchy)
	a.mu.Unlock()
	a.cache.purge()

	a.record(AuditEntry{Action: AuditRoleAdded, Role: role})
	return nil
}

// RemoveRole deletes a role from the configuration. Removing an absent role
// is a warned no-op. If the default role pointed at the removed role it is
// cleared. The hierarchy is left untouched: children still naming the role
// as a parent get an integrity warning and resolve that parent to "no
// permissions" from now on.
func (a *Authorizer) RemoveRole(role string) error {
	if err := ValidateIdentifier(role, "role"); err != nil {
		return err
	}

	a.mu.Lock()
	if _, ok := a.snap.config.Roles[role]; !ok {
		a.mu.Unlock()
		a.logger.Warn("remove of unknown role ignored", "role", role)
		return nil
	}
	cfg := a.snap.config.clone()
	delete(cfg.Roles, role)
	if cfg.DefaultRole == role {
		cfg.DefaultRole = ""
	}

	var orphaned []string
	for child, parents := range a.snap.hierarchy {
		for _, parent := range parents {
			if parent == role {
				orphaned = append(orphaned, child)
				break
			}
		}
	}
	a.snap = newSnapshot(cfg, a.snap.hierarchy)
	a.mu.Unlock()
	a.cache.purge()

	for _, child := range orphaned {
		a.logger.Warn("hierarchy references removed role",
			"role", child, "removed_parent", role)
	}

	a.record(AuditEntry{Action: AuditRoleRemoved, Role: role})
	return nil
}

// record timestamps an audit entry and hands it to the sink. Sink failures
// never fail the operation that produced the entry.
func (a *Authorizer) record(entry AuditEntry) {
	entry.At = a.now()
	if err := a.audit.Record(context.Background(), entry); err != nil {
		a.logger.Warn("audit record dropped", "action", entry.Action, "error", err)
	}
}
