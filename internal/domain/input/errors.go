package input

import "fmt"

// ConflictError reports a merge of two keyframes that set the same analog
// axis to different non-default values.
type ConflictError struct {
	Axis string
	A, B float64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflicting values for axis %s: %g vs %g", e.Axis, e.A, e.B)
}

// InvalidArityError reports a repeat count below one.
type InvalidArityError struct {
	Count int
}

func (e *InvalidArityError) Error() string {
	return fmt.Sprintf("repeat count must be >= 1, got %d", e.Count)
}

// UnsupportedError reports an algebraic combination the model rejects,
// such as merging two multi-keyframe sequences.
type UnsupportedError struct {
	Op     string
	Reason string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported operation %s: %s", e.Op, e.Reason)
}
