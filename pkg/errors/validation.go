package errors

import (
	"math"
	"slices"
	"strings"
	"unicode"
)

// ValidateShapeName validates a generator name against the known set.
// Names are matched case-insensitively after trimming.
func ValidateShapeName(name string, known []string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return New(ErrCodeInvalidShape, "shape name cannot be empty")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidShape, "shape name contains invalid control characters")
		}
	}
	if !slices.Contains(known, name) {
		return New(ErrCodeInvalidShape, "unknown shape %q (known: %s)", name, strings.Join(known, ", "))
	}
	return nil
}

// ValidateResolution checks a grid or marching-cubes resolution.
func ValidateResolution(n, lo, hi int) error {
	if n < lo || n > hi {
		return New(ErrCodeInvalidInput, "resolution %d out of range [%d, %d]", n, lo, hi)
	}
	return nil
}

// ValidateRadius checks a positive, finite size parameter.
func ValidateRadius(r float64) error {
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return New(ErrCodeInvalidInput, "radius must be a positive finite number, got %v", r)
	}
	return nil
}

// ValidatePath validates a snapshot file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}
	return nil
}
