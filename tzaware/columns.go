package tzaware

import "strings"

// ColumnSet names the three storage columns of one composite.
type ColumnSet struct {
	UTC    string
	Zone   string
	Offset string
}

// Columns derives column names from base: base_utc, base_tzname, base_tzoffset.
func Columns(base string) ColumnSet {
	return ColumnSet{
		UTC:    base + "_utc",
		Zone:   base + "_tzname",
		Offset: base + "_tzoffset",
	}
}

// Names returns the column names in storage order.
func (c ColumnSet) Names() []string { return []string{c.UTC, c.Zone, c.Offset} }

// Select returns the column names joined for a SELECT or INSERT list.
func (c ColumnSet) Select() string { return strings.Join(c.Names(), ", ") }
