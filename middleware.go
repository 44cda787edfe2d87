package rbac

import (
	"encoding/json"
	"net/http"
	"strings"
)

// RolesFunc resolves the caller's roles from a request. It may block on
// I/O (a session store, a token introspection call). An error means "no
// roles", never a failed request.
type RolesFunc func(*http.Request) ([]string, error)

// ValueFunc resolves the resource or permission for a request. An error or
// panic during resolution denies the request.
type ValueFunc func(*http.Request) (string, error)

// MiddlewareConfig configures the adapter returned by Middleware.
type MiddlewareConfig struct {
	// Roles resolves the caller's roles. Required.
	Roles RolesFunc

	// Resource and Permission identify what is being checked. Use
	// StaticValue for fixed values or any ValueFunc to derive them from
	// the request. Both required.
	Resource   ValueFunc
	Permission ValueFunc

	// OnDenied handles denied requests. When nil a generic structured 403
	// is written.
	OnDenied http.HandlerFunc

	// AuditLog, when true, records every check outcome to the audit sink.
	AuditLog bool
}

// Middleware produces a net/http middleware that authorizes each request
// with UserCan before passing it on.
//
// Every branch is fail-closed: a role resolver error yields an empty role
// list, a resource or permission resolver error yields a denial, and any
// panic anywhere in the chain yields a denial. The adapter never turns an
// internal failure into a default-allow and never lets one escape as an
// unhandled panic.
//
// Example:
//
//	handler := authz.Middleware(rbac.MiddlewareConfig{
//	    Roles:      rbac.RolesFromContext(),
//	    Resource:   rbac.StaticValue("Products"),
//	    Permission: rbac.StaticValue("DELETE"),
//	})(deleteProductHandler)
func (a *Authorizer) Middleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed := false
			var roles []string
			var resource, permission string

			// Resolution and the check itself run under a recover guard;
			// the zero value of allowed is a denial.
			func() {
				defer func() {
					if rec := recover(); rec != nil {
						a.logger.Error("authorization middleware recovered", "panic", rec)
						allowed = false
					}
				}()

				if cfg.Roles != nil {
					resolved, err := cfg.Roles(r)
					if err != nil {
						a.logger.Warn("role resolution failed, treating as no roles", "error", err)
					} else {
						roles = resolved
					}
				}

				var err error
				if cfg.Resource == nil || cfg.Permission == nil {
					a.logger.Error("middleware misconfigured: resource and permission resolvers are required")
					return
				}
				resource, err = cfg.Resource(r)
				if err != nil {
					a.logger.Warn("resource resolution failed, denying", "error", err)
					return
				}
				permission, err = cfg.Permission(r)
				if err != nil {
					a.logger.Warn("permission resolution failed, denying", "error", err)
					return
				}

				allowed = a.UserCan(Roles(roles), resource, permission)
			}()

			if cfg.AuditLog {
				a.recordCheck(r, roles, resource, permission, allowed)
			}

			if !allowed {
				if cfg.OnDenied != nil {
					cfg.OnDenied(w, r)
					return
				}
				writeForbidden(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithRoles(r.Context(), roles)))
		})
	}
}

// recordCheck emits an access_checked audit entry enriched with request
// metadata. Panics in a misbehaving sink are contained here; an audit
// failure must not flip an authorization outcome.
func (a *Authorizer) recordCheck(r *http.Request, roles []string, resource, permission string, allowed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("audit sink recovered", "panic", rec)
		}
	}()

	ctx := r.Context()
	entry := AuditEntry{
		ActorID:     ActorIDFrom(ctx),
		Action:      AuditAccessChecked,
		Role:        strings.Join(roles, ","),
		Resource:    resource,
		Permissions: []string{permission},
		Allowed:     allowed,
		IPAddress:   clientIP(r),
		UserAgent:   r.UserAgent(),
		RequestID:   requestID(r),
		At:          a.now(),
	}
	if err := a.audit.Record(ctx, entry); err != nil {
		a.logger.Warn("audit record dropped", "action", entry.Action, "error", err)
	}
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func requestID(r *http.Request) string {
	if id := RequestIDFrom(r.Context()); id != "" {
		return id
	}
	return r.Header.Get("X-Request-ID")
}

func writeForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": "forbidden",
	})
}

// StaticValue creates a ValueFunc that always returns the same value.
func StaticValue(value string) ValueFunc {
	return func(*http.Request) (string, error) {
		return value, nil
	}
}

// ValueFromQuery creates a ValueFunc reading a query parameter.
//
// Example:
//
//	// For /api/files?resource=Files
//	Resource: rbac.ValueFromQuery("resource")
func ValueFromQuery(param string) ValueFunc {
	return func(r *http.Request) (string, error) {
		v := r.URL.Query().Get(param)
		if v == "" {
			return "", NewError(ErrUnauthorized, "value not found in query").WithField(param)
		}
		return v, nil
	}
}

// ValueFromHeader creates a ValueFunc reading a request header.
func ValueFromHeader(name string) ValueFunc {
	return func(r *http.Request) (string, error) {
		v := r.Header.Get(name)
		if v == "" {
			return "", NewError(ErrUnauthorized, "value not found in header").WithField(name)
		}
		return v, nil
	}
}

// ValueFromPath creates a ValueFunc reading a named path segment
// (compatible with net/http path patterns).
//
// Example:
//
//	// For route "DELETE /products/{id}"
//	Resource: rbac.ValueFromPath("id")
func ValueFromPath(name string) ValueFunc {
	return func(r *http.Request) (string, error) {
		v := r.PathValue(name)
		if v == "" {
			return "", NewError(ErrUnauthorized, "value not found in path").WithField(name)
		}
		return v, nil
	}
}

// StaticRoles creates a RolesFunc that always returns the same roles.
// Useful in tests and internal tooling.
func StaticRoles(roles ...string) RolesFunc {
	return func(*http.Request) ([]string, error) {
		return roles, nil
	}
}

// RolesFromContext creates a RolesFunc reading roles previously stored in
// the request context with WithRoles (typically by an authentication
// middleware upstream).
func RolesFromContext() RolesFunc {
	return func(r *http.Request) ([]string, error) {
		return RolesFrom(r.Context()), nil
	}
}

// RolesFromHeader creates a RolesFunc splitting a comma-separated header.
// Intended for internal services behind a trusted gateway, not for
// browser-facing deployments.
func RolesFromHeader(name string) RolesFunc {
	return func(r *http.Request) ([]string, error) {
		raw := r.Header.Get(name)
		if raw == "" {
			return nil, nil
		}
		parts := strings.Split(raw, ",")
		roles := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				roles = append(roles, p)
			}
		}
		return roles, nil
	}
}
