package tzaware

import (
	"database/sql"
	"time"
)

// Fields are the three storable parts of an Instant, in storage order.
type Fields struct {
	UTC    sql.NullTime   // instant normalized to UTC, no offset attached
	Zone   sql.NullString // display label of the originating zone
	Offset sql.NullInt32  // seconds east of UTC
}

// ScanDest returns scan destinations for the three fields, in storage order.
func (f *Fields) ScanDest() []any {
	return []any{&f.UTC, &f.Zone, &f.Offset}
}

// Args returns the three fields as query arguments; absent fields are nil.
func (f Fields) Args() []any {
	args := make([]any, 3)
	if f.UTC.Valid {
		args[0] = f.UTC.Time
	}
	if f.Zone.Valid {
		args[1] = f.Zone.String
	}
	if f.Offset.Valid {
		args[2] = f.Offset.Int32
	}
	return args
}

// NewFields builds Fields from optional values.
func NewFields(utc *time.Time, zone *string, offset *int32) Fields {
	var f Fields
	if utc != nil {
		f.UTC = sql.NullTime{Time: *utc, Valid: true}
	}
	if zone != nil {
		f.Zone = sql.NullString{String: *zone, Valid: true}
	}
	if offset != nil {
		f.Offset = sql.NullInt32{Int32: *offset, Valid: true}
	}
	return f
}

// RoundFields decomposes c for a store that keeps the UTC instant at precision. A
// non-positive precision keeps the instant as is.
func RoundFields(c Composite, precision time.Duration) Fields {
	f := c.ToFields()
	if f.UTC.Valid && precision > 0 {
		f.UTC.Time = f.UTC.Time.UTC().Round(precision)
	}
	return f
}
