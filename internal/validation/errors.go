package validation

import (
	"sort"
	"strings"
)

// FieldErrors maps a field path such as "customerEmail" or "items.0.unitPrice"
// to the messages reported for it, in the order they were found.
type FieldErrors map[string][]string

// Add records msg against path
func (fe FieldErrors) Add(path, msg string) {
	fe[path] = append(fe[path], msg)
}

// HasErrors reports whether anything was recorded
func (fe FieldErrors) HasErrors() bool {
	return len(fe) > 0
}

// Error implements error so a failed result can travel through error returns
func (fe FieldErrors) Error() string {
	paths := make([]string, 0, len(fe))
	for p := range fe {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		parts = append(parts, p+": "+strings.Join(fe[p], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
