package errors

import (
	"strings"
	"unicode"
)

// ValidateDesignName validates a design name for safety and correctness.
// It rejects names that could be used for path traversal or injection when
// the name is later used as a cache key, file name, or database key.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidateDesignName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "design name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidName, "design name too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "design name contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidName, "design name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateObjectName validates a modeler object name.
// Object names must be valid identifiers on the CAD side: a letter or
// underscore followed by letters, digits, and underscores.
func ValidateObjectName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "object name cannot be empty")
	}

	for i, r := range name {
		switch {
		case r == '_':
		case unicode.IsLetter(r):
		case unicode.IsDigit(r):
			if i == 0 {
				return New(ErrCodeInvalidName, "object name cannot start with a digit: %q", name)
			}
		default:
			return New(ErrCodeInvalidName, "object name contains invalid character %q", r)
		}
	}

	return nil
}

// ValidateDesignPath validates a design file path for safety.
// It prevents path traversal and ensures reasonable path length.
func ValidateDesignPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "path contains invalid characters")
		}
	}

	return nil
}
