package coach

import (
	"fmt"
	"strings"
)

// errorf creates a formatted error with the library prefix
func errorf(format string, args ...interface{}) error {
	return fmt.Errorf("coach: "+format, args...)
}

// ParamError is returned when a SetParams path cannot be resolved or the
// value cannot be applied. The path is kept verbatim so callers can map
// the failure back to their grid or config entry.
type ParamError struct {
	Path     string // full double-underscore path as given
	Value    any    // value that was being applied
	Expected string // what would have been accepted, "" if not applicable
	Cause    string // human-readable cause
}

func (e *ParamError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "coach: cannot set %q", e.Path)
	if e.Value != nil {
		fmt.Fprintf(&b, " to %v (%T)", e.Value, e.Value)
	}
	fmt.Fprintf(&b, ": %s", e.Cause)
	if e.Expected != "" {
		fmt.Fprintf(&b, " (expected %s)", e.Expected)
	}
	return b.String()
}

// splitParamPath splits a double-underscore path into its segments.
// "callbacks__threshold__min_accuracy" -> ["callbacks", "threshold", "min_accuracy"]
func splitParamPath(path string) []string {
	return strings.Split(path, "__")
}
