package rbac

import (
	"strings"
)

// RoleDefinition describes a single role: an optional human description and
// the permissions it grants, keyed by resource.
type RoleDefinition struct {
	// Description is free-form documentation for the role.
	Description string

	// Grants maps a resource name to the permissions the role holds on it.
	// Duplicate permissions collapse on ingestion.
	Grants map[string][]string
}

// Config is the full role configuration for an Authorizer.
//
// A Config is never mutated in place: every ingestion and every externally
// observable read goes through an explicit deep copy, so callers can neither
// alias internal state nor have their own maps aliased by the engine.
type Config struct {
	// Roles maps role names to their definitions.
	Roles map[string]RoleDefinition

	// DefaultRole, when set, names the role checked for subjects that carry
	// no roles of their own. It must name an existing role.
	DefaultRole string
}

// Validate checks the configuration for structural errors: an empty role
// set, malformed identifiers, or a default role that does not resolve.
func (c Config) Validate() error {
	if len(c.Roles) == 0 {
		return NewError(ErrInvalidConfig, "configuration must define at least one role")
	}

	for role, def := range c.Roles {
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
	}

	if c.DefaultRole != "" {
		if _, ok := c.Roles[c.DefaultRole]; !ok {
			return NewError(ErrInvalidConfig, "default role is not defined in the role set").
				WithRole(c.DefaultRole)
		}
	}

	return nil
}

// clone returns a deep, normalized copy of the configuration. Permission
// lists are deduplicated (first occurrence wins) and descriptions trimmed.
// The copy shares no maps or slices with the receiver.
func (c Config) clone() Config {
	out := Config{
		Roles:       make(map[string]RoleDefinition, len(c.Roles)),
		DefaultRole: c.DefaultRole,
	}
	for role, def := range c.Roles {
		out.Roles[role] = def.clone()
	}
	return out
}

// clone returns a deep, normalized copy of a role definition.
func (d RoleDefinition) clone() RoleDefinition {
	out := RoleDefinition{
		Description: strings.TrimSpace(d.Description),
		Grants:      make(map[string][]string, len(d.Grants)),
	}
	for resource, perms := range d.Grants {
		out.Grants[resource] = dedupe(perms)
	}
	return out
}

// dedupe copies a permission list, collapsing duplicates while keeping the
// first-seen order.
func dedupe(perms []string) []string {
	out := make([]string, 0, len(perms))
	seen := make(map[string]bool, len(perms))
	for _, p := range perms {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
