// Package rbac is an in-process role-based authorization engine: given a
// set of role definitions (role -> resource -> allowed actions) it answers
// "may this role or user perform this action on this resource?", with
// role-inheritance hierarchies, a bounded decision cache and a fluent
// configuration builder.
//
// # Core Concepts
//
// Role: a named bundle of permissions, the unit a caller is checked
// against. Resource: a named object or module permissions apply to.
// Permission: a named action on a resource. Permissions are explicit
// enumerations; there is no wildcard matching.
//
// Hierarchy: a child-to-parent-roles mapping. A role inherits, transitively,
// every permission of its parents. Parents are consulted in declared order
// and the graph is proven acyclic when it is assigned.
//
// Default-deny: every uncertain, malformed or erroring check at a
// security-sensitive boundary (UserCan, EvaluatePolicy, the middleware)
// resolves to a denial, never to an error escaping the request path.
//
// # Basic Usage
//
//	// 1. Define the configuration (at application startup)
//	cfg, err := rbac.NewBuilder().
//	    Role("ADMIN").
//	        Grant("Products", "CREATE", "READ", "UPDATE", "DELETE", "VIEW").
//	    Role("CLIENT").
//	        Grant("Products", "READ", "VIEW").
//	    Default("CLIENT").
//	    Build()
//
//	// 2. Create the authorizer
//	authz, err := rbac.New(cfg, rbac.WithCache(1000, time.Minute))
//
//	// 3. Inheritance
//	err = authz.SetRoleHierarchy(map[string][]string{
//	    "EDITOR": {"ADMIN"},
//	})
//
//	// 4. Check permissions
//	ok, err := authz.Can("ADMIN", "Products", "DELETE")       // true
//	ok = authz.UserCan(rbac.Roles{"EDITOR", "CLIENT"}, "Products", "READ")
//
//	// 5. Mutate at runtime
//	err = authz.Grant("CLIENT", "Bookings", "CREATE")
//	err = authz.Revoke("CLIENT", "Products", "VIEW")
//
// # Middleware Usage
//
//	protected := authz.Middleware(rbac.MiddlewareConfig{
//	    Roles:      rbac.RolesFromContext(),
//	    Resource:   rbac.StaticValue("Products"),
//	    Permission: rbac.StaticValue("DELETE"),
//	    AuditLog:   true,
//	})
//	mux.Handle("DELETE /products/{id}", protected(deleteHandler))
//
// # Strict Mode
//
// By default a check against an unknown role resolves to false with a
// warning log. With WithStrict, unknown roles fail with ErrUnknownRole
// instead: misspelling a role name in code is caller misconfiguration
// worth surfacing. Unknown resources and permissions are routine "not
// granted" outcomes and stay a silent false in both modes.
//
// # Decision Cache
//
// Results are cached per (role, resource, permission) triple in a bounded
// LRU with TTL expiry. Every mutation (Grant, Revoke, AddRole, RemoveRole,
// UpdateConfig, SetRoleHierarchy) invalidates the whole cache; a version
// stamp on each entry discards in-flight stale writes that race an
// invalidation.
//
// # Audit Trail
//
// Mutations and (optionally) middleware checks emit audit records to a
// pluggable sink: NewLogSink writes them to a slog logger, NewStore
// persists them to a database with filtered queries. See Store.
package rbac
