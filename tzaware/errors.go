package tzaware

import (
	"errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	// ErrNaiveInput indicates a timestamp without offset information under RejectNaive.
	ErrNaiveInput = errors.New("tzaware: timestamp has no offset")

	// ErrIncompleteComposite indicates a zone label or offset stored without a UTC instant.
	ErrIncompleteComposite = errors.New("tzaware: incomplete composite")

	// ErrInvalidInput indicates text that is not a recognised timestamp.
	ErrInvalidInput = errors.New("tzaware: invalid timestamp")
)

// NaiveInputError is returned when decomposition receives a timestamp lacking offset
// information and the policy rejects naive input.
type NaiveInputError struct {
	Input string
}

func (e *NaiveInputError) Error() string {
	return fmt.Sprintf("tzaware: timestamp %q has no offset", e.Input)
}

func (e *NaiveInputError) Is(target error) bool { return target == ErrNaiveInput }

// IncompleteCompositeError is returned when stored fields violate the
// "all absent or UTC present" invariant.
type IncompleteCompositeError struct {
	Fields Fields
}

func (e *IncompleteCompositeError) Error() string {
	return fmt.Sprintf("tzaware: incomplete composite: utc absent, zone=%v offset=%v",
		nullZone(e.Fields), nullOffset(e.Fields))
}

func (e *IncompleteCompositeError) Is(target error) bool { return target == ErrIncompleteComposite }

// ParseError wraps text that could not be parsed as a timestamp.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tzaware: parse %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrInvalidInput }
