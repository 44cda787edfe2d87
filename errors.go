package rbac

import (
	"errors"
	"fmt"
)

// Sentinel errors for RBAC operations.
var (
	// ErrInvalidInput is returned when a role, resource or permission
	// identifier is malformed. The offending value is never included in the
	// error message; it is only written to the configured logger.
	ErrInvalidInput = errors.New("rbac: invalid input")

	// ErrInvalidConfig is returned when a configuration is structurally
	// broken (no roles, dangling default role, malformed definitions).
	ErrInvalidConfig = errors.New("rbac: invalid configuration")

	// ErrUnknownRole is returned when a role is not present in the
	// configuration and the operation requires it to exist.
	ErrUnknownRole = errors.New("rbac: unknown role")

	// ErrCircularHierarchy is returned when a role hierarchy contains a
	// cycle, including direct self-reference.
	ErrCircularHierarchy = errors.New("rbac: circular role hierarchy")

	// ErrUnauthorized is returned through the middleware error path when a
	// request does not carry the required permission.
	ErrUnauthorized = errors.New("rbac: unauthorized")

	// ErrAuditError is returned when an audit store operation fails.
	ErrAuditError = errors.New("rbac: audit error")
)

// Error wraps a sentinel error with additional context.
type Error struct {
	Err        error  // Underlying sentinel error
	Message    string // Additional context
	Field      string // Name of the field that failed validation
	Role       string // Role involved (if applicable)
	Resource   string // Resource involved (if applicable)
	Permission string // Permission involved (if applicable)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches a target error.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a new Error with context.
func NewError(err error, message string) *Error {
	return &Error{
		Err:     err,
		Message: message,
	}
}

// WithField adds the name of the failing field to the error.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithRole adds role information to the error.
func (e *Error) WithRole(role string) *Error {
	e.Role = role
	return e
}

// WithResource adds resource information to the error.
func (e *Error) WithResource(resource string) *Error {
	e.Resource = resource
	return e
}

// WithPermission adds permission information to the error.
func (e *Error) WithPermission(permission string) *Error {
	e.Permission = permission
	return e
}

// IsInvalidInput checks if an error is due to a malformed identifier.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsInvalidConfig checks if an error is due to a broken configuration.
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsUnknownRole checks if an error is due to an undefined role.
func IsUnknownRole(err error) bool {
	return errors.Is(err, ErrUnknownRole)
}

// IsCircularHierarchy checks if an error is due to a hierarchy cycle.
func IsCircularHierarchy(err error) bool {
	return errors.Is(err, ErrCircularHierarchy)
}

// IsUnauthorized checks if an error is an authorization error.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsAuditError checks if an error comes from the audit trail.
func IsAuditError(err error) bool {
	return errors.Is(err, ErrAuditError)
}
