// Package tzaware stores timezone-aware timestamps in timezone-naive storage.
//
// An Instant is decomposed into three independently nullable fields: the instant
// normalized to UTC, an optional zone label kept for display, and the signed offset
// from UTC in seconds (positive east of UTC). Reading an Instant back restores the
// captured offset as a nameless fixed zone; the label is never reparsed.
package tzaware

import (
	"fmt"
	"slices"
	"time"
)

// Instant is a timezone-aware timestamp held as its three storable fields.
//
// The zero value is the empty instant. Instant values are not comparable with ==;
// use Equal or Compare, which look at the UTC instant only.
type Instant struct {
	_ [0]func()

	utc    time.Time
	hasUTC bool

	zone    string
	hasZone bool

	offset    int32
	hasOffset bool
}

// Composite is implemented by values that can be decomposed into storable fields.
type Composite interface {
	ToFields() Fields
}

var _ Composite = Instant{}

// Empty returns the empty instant.
func Empty() Instant { return Instant{} }

// Decompose captures t as an Instant. The zero time yields the empty instant. IsZero
// looks at the instant only, so 0001-01-01T00:00:00Z expressed in any zone (for example
// 0001-01-01T01:00:00+01:00) is empty as well and does not round-trip.
func Decompose(t time.Time) Instant {
	if t.IsZero() {
		return Instant{}
	}
	name, off := t.Zone()
	in := Instant{
		utc:       t.UTC(),
		hasUTC:    true,
		offset:    int32(off),
		hasOffset: true,
	}
	if name != "" {
		in.zone, in.hasZone = name, true
	}
	return in
}

// FromFields copies stored fields verbatim. No conversion or validation is done;
// see Policy.Rehydrate for the checked variant.
func FromFields(f Fields) Instant {
	in := Instant{
		utc:       f.UTC.Time,
		hasUTC:    f.UTC.Valid,
		zone:      f.Zone.String,
		hasZone:   f.Zone.Valid,
		offset:    f.Offset.Int32,
		hasOffset: f.Offset.Valid,
	}
	if !in.hasUTC {
		in.utc = time.Time{}
	}
	if !in.hasZone {
		in.zone = ""
	}
	if !in.hasOffset {
		in.offset = 0
	}
	return in
}

// ToFields returns the three storable fields.
func (in Instant) ToFields() Fields {
	var f Fields
	f.UTC.Time, f.UTC.Valid = in.utc, in.hasUTC
	f.Zone.String, f.Zone.Valid = in.zone, in.hasZone
	f.Offset.Int32, f.Offset.Valid = in.offset, in.hasOffset
	return f
}

// IsEmpty reports whether the UTC instant is absent.
func (in Instant) IsEmpty() bool { return !in.hasUTC }

// UTC returns the stored UTC instant.
func (in Instant) UTC() (time.Time, bool) { return in.utc, in.hasUTC }

// Zone returns the stored zone label.
func (in Instant) Zone() (string, bool) { return in.zone, in.hasZone }

// Offset returns the stored offset in seconds east of UTC.
func (in Instant) Offset() (int, bool) { return int(in.offset), in.hasOffset }

// Time reconstructs the timezone-aware timestamp. Without an offset the UTC instant is
// returned in time.UTC; otherwise it is expressed in a nameless fixed zone at the
// stored offset.
func (in Instant) Time() (time.Time, bool) {
	if !in.hasUTC {
		return time.Time{}, false
	}
	t := in.utc.In(time.UTC)
	if !in.hasOffset {
		return t, true
	}
	return t.In(time.FixedZone("", int(in.offset))), true
}

// TimeOrZero is Time without the presence flag.
func (in Instant) TimeOrZero() time.Time {
	t, _ := in.Time()
	return t
}

// Validate reports an IncompleteCompositeError when a zone label or offset is present
// without a UTC instant.
func (in Instant) Validate() error {
	if !in.hasUTC && (in.hasZone || in.hasOffset) {
		return &IncompleteCompositeError{Fields: in.ToFields()}
	}
	return nil
}

// Equal reports whether a and b hold the same UTC instant. Zone labels and offsets
// are ignored. Two empty instants are equal.
func (in Instant) Equal(other Instant) bool { return Equal(in, other) }

// Compare orders by UTC instant; see the package-level Compare.
func (in Instant) Compare(other Instant) int { return Compare(in, other) }

func (in Instant) String() string {
	t, ok := in.Time()
	if !ok {
		return "<empty>"
	}
	s := t.Format(time.RFC3339Nano)
	if in.hasZone {
		s += " (" + in.zone + ")"
	}
	return s
}

// GoString keeps %#v readable in test failures.
func (in Instant) GoString() string {
	f := in.ToFields()
	return fmt.Sprintf("tzaware.Instant{utc:%v zone:%v offset:%v}", nullTime(f), nullZone(f), nullOffset(f))
}

// Equal reports whether a and b hold the same UTC instant.
func Equal(a, b Instant) bool {
	if a.hasUTC != b.hasUTC {
		return false
	}
	return !a.hasUTC || a.utc.Equal(b.utc)
}

// Compare returns -1, 0 or +1 ordering a and b by UTC instant ascending.
// Empty instants sort before every non-empty one and compare equal to each other.
func Compare(a, b Instant) int {
	switch {
	case !a.hasUTC && !b.hasUTC:
		return 0
	case !a.hasUTC:
		return -1
	case !b.hasUTC:
		return 1
	}
	return a.utc.Compare(b.utc)
}

// Less reports whether a sorts before b.
func Less(a, b Instant) bool { return Compare(a, b) < 0 }

// Sort orders s by UTC instant, empties first. The sort is stable.
func Sort(s []Instant) {
	slices.SortStableFunc(s, Compare)
}

// OffsetFromDaySplit converts an offset held as a (days, seconds) pair, where seconds
// is non-negative and the sign lives in days, into signed seconds east of UTC.
func OffsetFromDaySplit(days, seconds int) int {
	return days*86400 + seconds
}

func nullTime(f Fields) any {
	if !f.UTC.Valid {
		return nil
	}
	return f.UTC.Time.Format(time.RFC3339Nano)
}

func nullZone(f Fields) any {
	if !f.Zone.Valid {
		return nil
	}
	return fmt.Sprintf("%q", f.Zone.String)
}

func nullOffset(f Fields) any {
	if !f.Offset.Valid {
		return nil
	}
	return f.Offset.Int32
}
