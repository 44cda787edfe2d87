package rbac

import (
	"context"
)

// Context keys for RBAC values.
type contextKey string

const (
	contextKeyRoles     contextKey = "rbac:roles"
	contextKeyActorID   contextKey = "rbac:actor_id"
	contextKeyIPAddress contextKey = "rbac:ip_address"
	contextKeyUserAgent contextKey = "rbac:user_agent"
	contextKeyRequestID contextKey = "rbac:request_id"
)

// WithRoles adds a role list to the context. The middleware stores the
// resolved caller roles here after a successful check, so downstream
// handlers can run further checks without re-resolving.
func WithRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, contextKeyRoles, roles)
}

// RolesFrom retrieves the role list from context. Returns nil if not set.
func RolesFrom(ctx context.Context) []string {
	if v := ctx.Value(contextKeyRoles); v != nil {
		if roles, ok := v.([]string); ok {
			return roles
		}
	}
	return nil
}

// WithActorID adds an actor ID to the context (for audit purposes).
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, contextKeyActorID, actorID)
}

// ActorIDFrom retrieves the actor ID from context. Returns empty string if
// not set.
func ActorIDFrom(ctx context.Context) string {
	if v := ctx.Value(contextKeyActorID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithIPAddress adds the client IP address to the context (for audit).
func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKeyIPAddress, ip)
}

// IPAddressFrom retrieves the IP address from context.
func IPAddressFrom(ctx context.Context) string {
	if v := ctx.Value(contextKeyIPAddress); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithUserAgent adds the user agent to the context (for audit).
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, contextKeyUserAgent, userAgent)
}

// UserAgentFrom retrieves the user agent from context.
func UserAgentFrom(ctx context.Context) string {
	if v := ctx.Value(contextKeyUserAgent); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context (for audit).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, requestID)
}

// RequestIDFrom retrieves the request ID from context.
func RequestIDFrom(ctx context.Context) string {
	if v := ctx.Value(contextKeyRequestID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
