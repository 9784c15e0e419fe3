package registration

import (
	"fmt"
	"sort"
	"strings"
)

// FieldErrors maps canonical field paths to human readable messages.
type FieldErrors map[string]string

// Get looks up the message for a field path in dotted or bracketed form.
func (f FieldErrors) Get(path string) (string, bool) {
	msg, ok := f[CanonicalPath(path)]
	return msg, ok
}

// Paths returns the failing field paths in sorted order.
func (f FieldErrors) Paths() []string {
	paths := make([]string, 0, len(f))
	for path := range f {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// ValidationError is returned by Schema.Validate when any field is invalid.
type ValidationError struct {
	Errors FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("registration: invalid fields: %s", strings.Join(e.Errors.Paths(), ", "))
}
