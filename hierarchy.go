package rbac

// validateHierarchy checks that the child-to-parents mapping forms an
// acyclic graph. Self-reference counts as a one-node cycle. Parents that
// are not themselves children are fine; parents absent from the role
// configuration are also fine (they resolve to "no permissions" at query
// time, not to a hierarchy error).
//
// Detection is a depth-first traversal keeping an on-stack set for the
// current path and a done set for roles already proven acyclic.
func validateHierarchy(hierarchy map[string][]string) error {
	onStack := make(map[string]bool)
	done := make(map[string]bool)

	var visit func(role string) error
	visit = func(role string) error {
		if done[role] {
			return nil
		}
		if onStack[role] {
			return NewError(ErrCircularHierarchy, "cycle detected at role "+role).WithRole(role)
		}
		onStack[role] = true
		for _, parent := range hierarchy[role] {
			if err := visit(parent); err != nil {
				return err
			}
		}
		onStack[role] = false
		done[role] = true
		return nil
	}

	for child := range hierarchy {
		if err := visit(child); err != nil {
			return err
		}
	}
	return nil
}

// cloneHierarchy deep-copies a hierarchy mapping, preserving parent order.
func cloneHierarchy(hierarchy map[string][]string) map[string][]string {
	out := make(map[string][]string, len(hierarchy))
	for child, parents := range hierarchy {
		cp := make([]string, len(parents))
		copy(cp, parents)
		out[child] = cp
	}
	return out
}
