package rbac

// snapshot is one immutable view of the configuration and hierarchy.
// Mutations build a fresh snapshot and swap the pointer, so a reader
// observes either the fully-old or the fully-new state, never a mix.
type snapshot struct {
	config    Config
	hierarchy map[string][]string

	// perms indexes config.Roles for O(1) membership checks:
	// role -> resource -> permission -> present.
	perms map[string]map[string]map[string]bool
}

// newSnapshot builds a snapshot from an already cloned configuration and
// hierarchy. Both are owned by the snapshot from this point on.
func newSnapshot(cfg Config, hierarchy map[string][]string) *snapshot {
	perms := make(map[string]map[string]map[string]bool, len(cfg.Roles))
	for role, def := range cfg.Roles {
		byResource := make(map[string]map[string]bool, len(def.Grants))
		for resource, list := range def.Grants {
			set := make(map[string]bool, len(list))
			for _, p := range list {
				set[p] = true
			}
			byResource[resource] = set
		}
		perms[role] = byResource
	}
	return &snapshot{
		config:    cfg,
		hierarchy: hierarchy,
		perms:     perms,
	}
}

// resolve answers whether role holds permission on resource, consulting the
// cache, the direct grants, and then each hierarchy parent in declared
// order. Recursion reuses the full algorithm, so a parent's own inherited
// permissions count and every level fills the cache.
//
// When strict is true an unknown role at the top level surfaces as
// ErrUnknownRole. Unknown parents never error: a dangling parent reference
// simply contributes no permissions. The visited set guarantees termination
// even though the hierarchy was proven acyclic on assignment.
func (a *Authorizer) resolve(snap *snapshot, version uint64, role, resource, permission string, visited map[string]bool, top bool) (bool, error) {
	// In strict mode an unknown top-level role must error even when a
	// deny for the same triple is already cached (it may have been filled
	// while the role was walked as a dangling parent).
	if top && a.strict {
		if _, known := snap.perms[role]; !known {
			return false, NewError(ErrUnknownRole, "role is not defined").WithRole(role)
		}
	}

	if allowed, ok := a.cache.get(role, resource, permission); ok {
		return allowed, nil
	}

	byResource, known := snap.perms[role]
	if !known {
		if top {
			a.logger.Warn("permission check for unknown role", "role", role)
		}
		a.cache.set(role, resource, permission, false, version)
		return false, nil
	}

	allowed := byResource[resource][permission]

	if !allowed {
		visited[role] = true
		for _, parent := range snap.hierarchy[role] {
			if visited[parent] {
				continue
			}
			inherited, err := a.resolve(snap, version, parent, resource, permission, visited, false)
			if err != nil {
				return false, err
			}
			if inherited {
				allowed = true
				break
			}
		}
	}

	a.cache.set(role, resource, permission, allowed, version)
	return allowed, nil
}

// permissionsFor collects the union of a role's direct permissions on a
// resource and, transitively, every hierarchy parent's permissions on the
// same resource.
func (snap *snapshot) permissionsFor(role, resource string, visited map[string]bool, into map[string]bool) {
	if visited[role] {
		return
	}
	visited[role] = true

	if def, ok := snap.config.Roles[role]; ok {
		for _, p := range def.Grants[resource] {
			into[p] = true
		}
	}
	for _, parent := range snap.hierarchy[role] {
		snap.permissionsFor(parent, resource, visited, into)
	}
}

// resourcesFor collects the union of a role's directly configured resources
// and every resource reachable through hierarchy parents.
func (snap *snapshot) resourcesFor(role string, visited map[string]bool, into map[string]bool) {
	if visited[role] {
		return
	}
	visited[role] = true

	if def, ok := snap.config.Roles[role]; ok {
		for resource := range def.Grants {
			into[resource] = true
		}
	}
	for _, parent := range snap.hierarchy[role] {
		snap.resourcesFor(parent, visited, into)
	}
}
