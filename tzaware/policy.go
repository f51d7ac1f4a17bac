package tzaware

import (
	"fmt"
	"strings"
	"time"
)

// NaivePolicy decides what happens to timestamps that carry no offset.
type NaivePolicy int

const (
	// RejectNaive fails with a NaiveInputError.
	RejectNaive NaivePolicy = iota
	// AssumeUTC reads the wall clock as UTC.
	AssumeUTC
)

func (p NaivePolicy) String() string {
	switch p {
	case RejectNaive:
		return "reject"
	case AssumeUTC:
		return "assume-utc"
	}
	return fmt.Sprintf("NaivePolicy(%d)", int(p))
}

// ParseNaivePolicy parses "reject" or "assume-utc".
func ParseNaivePolicy(s string) (NaivePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject", "strict":
		return RejectNaive, nil
	case "assume-utc", "utc", "legacy":
		return AssumeUTC, nil
	}
	return 0, fmt.Errorf("tzaware: unknown naive policy %q", s)
}

// IncompletePolicy decides whether rehydrated fields must satisfy the
// "all absent or UTC present" invariant.
type IncompletePolicy int

const (
	// RejectIncomplete fails with an IncompleteCompositeError.
	RejectIncomplete IncompletePolicy = iota
	// AllowIncomplete passes the fields through unchanged.
	AllowIncomplete
)

func (p IncompletePolicy) String() string {
	switch p {
	case RejectIncomplete:
		return "reject"
	case AllowIncomplete:
		return "allow"
	}
	return fmt.Sprintf("IncompletePolicy(%d)", int(p))
}

// ParseIncompletePolicy parses "reject" or "allow".
func ParseIncompletePolicy(s string) (IncompletePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject", "strict":
		return RejectIncomplete, nil
	case "allow", "legacy":
		return AllowIncomplete, nil
	}
	return 0, fmt.Errorf("tzaware: unknown incomplete policy %q", s)
}

// Policy bundles the input-handling choices. The zero value is Strict.
type Policy struct {
	Naive      NaivePolicy
	Incomplete IncompletePolicy
}

var (
	// Strict rejects naive text and incomplete stored fields.
	Strict = Policy{Naive: RejectNaive, Incomplete: RejectIncomplete}
	// Legacy assumes UTC for naive text and passes incomplete fields through.
	Legacy = Policy{Naive: AssumeUTC, Incomplete: AllowIncomplete}
)

var (
	awareLayouts = []string{
		time.RFC3339,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02T15:04Z07:00",
		"2006-01-02 15:04Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
	}
)

// Parse reads s as a timestamp and decomposes it. Empty text and "null" give the
// empty instant. Text without an offset is handled according to p.Naive.
func (p Policy) Parse(s string) (Instant, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return Instant{}, nil
	}

	var firstErr error
	for _, layout := range awareLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return Decompose(t), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	for _, layout := range naiveLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err != nil {
			continue
		}
		if p.Naive != AssumeUTC {
			return Instant{}, &NaiveInputError{Input: s}
		}
		return Decompose(t), nil
	}

	return Instant{}, &ParseError{Input: s, Err: firstErr}
}

// Rehydrate builds an Instant from stored fields, enforcing the invariant unless
// p.Incomplete is AllowIncomplete.
func (p Policy) Rehydrate(f Fields) (Instant, error) {
	in := FromFields(f)
	if p.Incomplete == AllowIncomplete {
		return in, nil
	}
	if err := in.Validate(); err != nil {
		return Instant{}, err
	}
	return in, nil
}

func (p Policy) String() string {
	return "naive=" + p.Naive.String() + " incomplete=" + p.Incomplete.String()
}
