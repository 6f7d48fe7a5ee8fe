package validation

import (
	"strings"
)

// ValidateName validates the public account name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return fail("name is required")
	}

	if len(trimmed) > 100 {
		return fail("name is too long (max 100 characters)")
	}

	return nil
}
