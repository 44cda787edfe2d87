package rbac

import (
	"strings"
)

// injectionMarkers are substrings characteristic of template or code
// injection. Identifiers containing any of them are rejected outright;
// an authorization identifier has no legitimate use for them.
var injectionMarkers = []string{
	"${",
	"$(",
	"{{",
	"}}",
	"<script",
	"</script",
	";'",
	";\"",
}

// ValidateIdentifier checks that a role, resource or permission identifier
// is safe to use. It fails for empty or whitespace-only values, values
// containing control characters, and values containing injection-style
// substrings.
//
// The returned error carries the field name but never the rejected value,
// so it can be surfaced to end users without reflecting attacker-controlled
// input. Callers log the raw value separately at warning level.
func ValidateIdentifier(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return NewError(ErrInvalidInput, field+" must be a non-empty string").WithField(field)
	}

	for _, r := range value {
		if r < 32 || r == 127 {
			return NewError(ErrInvalidInput, field+" has an invalid format").WithField(field)
		}
	}

	lower := strings.ToLower(value)
	for _, marker := range injectionMarkers {
		if strings.Contains(lower, marker) {
			return NewError(ErrInvalidInput, field+" has an invalid format").WithField(field)
		}
	}

	return nil
}

// validateTriple validates a (role, resource, permission) triple in one call.
// The first failing field wins.
func validateTriple(role, resource, permission string) error {
	if err := ValidateIdentifier(role, "role"); err != nil {
		return err
	}
	if err := ValidateIdentifier(resource, "resource"); err != nil {
		return err
	}
	return ValidateIdentifier(permission, "permission")
}
