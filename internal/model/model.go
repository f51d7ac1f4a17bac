// Package model defines domain entities used by services and repositories.
package model

import (
	"slices"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/tzaware/tzaware"
)

// MaxInfoLen is the longest info text accepted, in runes.
const MaxInfoLen = 255

// Years an instant may fall in, in UTC. Storage layouts carry four-digit years.
const (
	MinYear = 1
	MaxYear = 9999
)

// InYearRange reports whether the UTC instant of at lies within MinYear..MaxYear.
// The empty instant is in range.
func InYearRange(at tzaware.Instant) bool {
	utc, ok := at.UTC()
	if !ok {
		return true
	}
	y := utc.UTC().Year()
	return y >= MinYear && y <= MaxYear
}

// AtColumns names the storage columns of Entry.At.
var AtColumns = tzaware.Columns("at")

// Entry is a stored record carrying a timezone-aware timestamp.
type Entry struct {
	ID             uuid.UUID       `json:"id" yaml:"id"`
	Info           string          `json:"info" yaml:"info"`
	ExpectedOffset *int32          `json:"expected_offset,omitempty" yaml:"expected_offset,omitempty"` // seconds east of UTC the caller expects
	At             tzaware.Instant `json:"at" yaml:"at"`
	CreatedAt      time.Time       `json:"created_at" yaml:"created_at"` // maintained by the repo
}

// OffsetMatches reports whether the stored offset equals ExpectedOffset. The second
// result is false when either side is absent.
func (e *Entry) OffsetMatches() (match bool, known bool) {
	if e.ExpectedOffset == nil {
		return false, false
	}
	off, ok := e.At.Offset()
	if !ok {
		return false, false
	}
	return int32(off) == *e.ExpectedOffset, true
}

// SortEntries orders entries by the UTC instant of At, empty instants first.
func SortEntries(es []Entry) {
	slices.SortStableFunc(es, func(a, b Entry) int { return tzaware.Compare(a.At, b.At) })
}
