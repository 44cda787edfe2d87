package rbac

// Builder assembles a Config through a fluent API. It is a convenience
// constructor only: a Config literal passed to New is equally valid.
//
// Example:
//
//	cfg, err := rbac.NewBuilder().
//	    Role("ADMIN").Describe("full product access").
//	        Grant("Products", "CREATE", "READ", "UPDATE", "DELETE").
//	    Role("CLIENT").
//	        Grant("Products", "READ", "VIEW").
//	    Default("CLIENT").
//	    Build()
type Builder struct {
	roles       map[string]*RoleBuilder
	defaultRole string
}

// RoleBuilder configures a single role within a Builder.
type RoleBuilder struct {
	name        string
	description string
	grants      map[string][]string
	builder     *Builder
}

// NewBuilder creates an empty configuration builder.
func NewBuilder() *Builder {
	return &Builder{
		roles: make(map[string]*RoleBuilder),
	}
}

// Role starts (or resumes) defining a role. Returns a RoleBuilder for
// fluent configuration.
func (b *Builder) Role(name string) *RoleBuilder {
	if rb, ok := b.roles[name]; ok {
		return rb
	}
	rb := &RoleBuilder{
		name:    name,
		grants:  make(map[string][]string),
		builder: b,
	}
	b.roles[name] = rb
	return rb
}

// Default marks a role as the fallback for subjects without roles of their
// own. The role must be defined by the time Build is called.
func (b *Builder) Default(role string) *Builder {
	b.defaultRole = role
	return b
}

// Build emits a validated Config. It fails with ErrInvalidInput or
// ErrInvalidConfig when any identifier is malformed, no role was defined,
// or the default role does not resolve.
func (b *Builder) Build() (Config, error) {
	cfg := Config{
		Roles:       make(map[string]RoleDefinition, len(b.roles)),
		DefaultRole: b.defaultRole,
	}
	for name, rb := range b.roles {
		cfg.Roles[name] = RoleDefinition{
			Description: rb.description,
			Grants:      rb.grants,
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg.clone(), nil
}

// Describe sets the role description.
func (rb *RoleBuilder) Describe(description string) *RoleBuilder {
	rb.description = description
	return rb
}

// Grant adds permissions on a resource to the role. Repeated calls for the
// same resource accumulate; duplicates collapse at Build time.
func (rb *RoleBuilder) Grant(resource string, permissions ...string) *RoleBuilder {
	rb.grants[resource] = append(rb.grants[resource], permissions...)
	return rb
}

// Role continues defining another role on the parent builder (fluent API).
func (rb *RoleBuilder) Role(name string) *RoleBuilder {
	return rb.builder.Role(name)
}

// Default marks a role as the configuration default (fluent API).
func (rb *RoleBuilder) Default(role string) *Builder {
	return rb.builder.Default(role)
}

// Build emits the validated Config from the parent builder (fluent API).
func (rb *RoleBuilder) Build() (Config, error) {
	return rb.builder.Build()
}
