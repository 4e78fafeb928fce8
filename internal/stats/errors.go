package stats

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch is returned when paired inputs differ in length.
	ErrLengthMismatch = errors.New("x and y lengths differ")
	// ErrEmpty is returned when a statistic needs at least one value.
	ErrEmpty = errors.New("empty sample")
)

// UndefinedError reports a statistic that has no numeric value for the given
// input. Reason is suitable for display next to the result.
type UndefinedError struct {
	Reason string
}

func (e *UndefinedError) Error() string {
	if e == nil {
		return "undefined"
	}
	return fmt.Sprintf("undefined: %s", e.Reason)
}

// ConversionError indicates a value that cannot be represented as an integer.
type ConversionError struct {
	Value float64
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %v to int", e.Value)
}
