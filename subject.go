package rbac

// Subject is anything that can be checked for permissions: either a bare
// role list or a user record exposing one. The two variants are explicit
// types rather than duck-typed shapes, so resolution never probes
// arbitrary objects.
type Subject interface {
	// SubjectRoles returns the roles the subject carries.
	SubjectRoles() []string
}

// Roles is a bare list of role names acting as a Subject.
type Roles []string

// SubjectRoles implements Subject.
func (r Roles) SubjectRoles() []string {
	return r
}

// User is a user record carrying a role list.
type User struct {
	ID    string
	Roles []string
}

// SubjectRoles implements Subject.
func (u User) SubjectRoles() []string {
	return u.Roles
}

// UserCan reports whether a subject may perform a permission on a resource.
// A subject's effective rights are the union of all its roles' rights,
// including each role's inherited rights, so the check is a logical OR
// across the role list.
//
// This is a security-sensitive read boundary and it is fail-closed: a nil
// subject, an empty role list without a configured default role, a
// malformed identifier, or any internal error all resolve to false. Errors
// are logged, never propagated.
func (a *Authorizer) UserCan(subject Subject, resource, permission string) bool {
	if subject == nil {
		return false
	}

	roles := subject.SubjectRoles()
	if len(roles) == 0 {
		snap, _ := a.view()
		if snap.config.DefaultRole == "" {
			return false
		}
		roles = []string{snap.config.DefaultRole}
	}

	for _, role := range roles {
		allowed, err := a.Can(role, resource, permission)
		if err != nil {
			a.logger.Warn("user permission check failed closed",
				"role", role, "resource", resource, "permission", permission, "error", err)
			continue
		}
		if allowed {
			return true
		}
	}
	return false
}
