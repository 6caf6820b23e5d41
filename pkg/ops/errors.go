package ops

import (
	"errors"
	"fmt"
)

// ErrMalformedOperation matches every MalformedOperationError via errors.Is.
var ErrMalformedOperation = errors.New("malformed operation")

// MalformedOperationError reports a wire record that cannot be turned into an
// operation. Well and Position are -1 when the record was decoded on its own.
type MalformedOperationError struct {
	Well     int
	Position int
	Kind     string
	Reason   string
}

func (e *MalformedOperationError) Error() string {
	if e.Well < 0 {
		return fmt.Sprintf("malformed operation %q: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("well %d op %d: malformed operation %q: %s", e.Well, e.Position, e.Kind, e.Reason)
}

func (e *MalformedOperationError) Is(target error) bool {
	return target == ErrMalformedOperation
}

// InvalidOperationError reports an operation that violates its own constraints.
type InvalidOperationError struct {
	Op     Op
	Reason string
}

func (e *InvalidOperationError) Error() string {
	if e.Op == nil {
		return "invalid operation: " + e.Reason
	}
	return fmt.Sprintf("invalid operation %v: %s", e.Op, e.Reason)
}
