package rbac

import (
	"fmt"
)

// Policy is a single authorization question: may role perform permission
// on resource?
type Policy struct {
	Role       string `json:"role"`
	Resource   string `json:"resource"`
	Permission string `json:"permission"`
}

// Decision is a structured allow/deny answer with a human-readable reason.
// Reasons are templated from already validated values only; they never
// carry raw error text, stack traces or internal state.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// EvaluatePolicy evaluates a policy and produces a Decision. This boundary
// is fail-closed: a missing field, a malformed identifier or any resolution
// error yields a deny with a generic reason.
func (a *Authorizer) EvaluatePolicy(policy Policy) Decision {
	if err := validateTriple(policy.Role, policy.Resource, policy.Permission); err != nil {
		a.logger.Warn("policy rejected",
			"role", policy.Role, "resource", policy.Resource,
			"permission", policy.Permission, "error", err)
		return Decision{
			Allowed: false,
			Reason:  "access denied: request is malformed or incomplete",
		}
	}

	allowed, err := a.Can(policy.Role, policy.Resource, policy.Permission)
	if err != nil {
		a.logger.Warn("policy evaluation failed closed",
			"role", policy.Role, "resource", policy.Resource,
			"permission", policy.Permission, "error", err)
		return Decision{
			Allowed: false,
			Reason:  "access denied: the request could not be evaluated",
		}
	}

	if !allowed {
		return Decision{
			Allowed: false,
			Reason: fmt.Sprintf("role %q is not allowed to %q on %q",
				policy.Role, policy.Permission, policy.Resource),
		}
	}
	return Decision{
		Allowed: true,
		Reason: fmt.Sprintf("role %q is allowed to %q on %q",
			policy.Role, policy.Permission, policy.Resource),
	}
}
