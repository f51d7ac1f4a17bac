package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/tzaware/tzaware"
)

func TestOffsetMatches(t *testing.T) {
	pst := int32(-28800)
	nz := int32(46800)

	at := tzaware.Decompose(time.Date(2010, 1, 15, 8, 0, 0, 0, time.FixedZone("PST", -28800)))

	match, known := (&Entry{At: at, ExpectedOffset: &pst}).OffsetMatches()
	require.True(t, known)
	require.True(t, match)

	match, known = (&Entry{At: at, ExpectedOffset: &nz}).OffsetMatches()
	require.True(t, known)
	require.False(t, match)

	_, known = (&Entry{At: at}).OffsetMatches()
	require.False(t, known)

	_, known = (&Entry{At: tzaware.Empty(), ExpectedOffset: &pst}).OffsetMatches()
	require.False(t, known)
}

func TestSortEntries(t *testing.T) {
	base := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	es := []Entry{
		{Info: "late", At: tzaware.Decompose(base.Add(time.Hour))},
		{Info: "null", At: tzaware.Empty()},
		{Info: "early", At: tzaware.Decompose(base.In(time.FixedZone("", 3600)))},
	}
	SortEntries(es)
	require.Equal(t, "null", es[0].Info)
	require.Equal(t, "early", es[1].Info)
	require.Equal(t, "late", es[2].Info)
}

func TestAtColumns(t *testing.T) {
	require.Equal(t, []string{"at_utc", "at_tzname", "at_tzoffset"}, AtColumns.Names())
}

func TestInYearRange(t *testing.T) {
	require.True(t, InYearRange(tzaware.Empty()))
	require.True(t, InYearRange(tzaware.Decompose(time.Date(9999, 12, 31, 23, 0, 0, 0, time.UTC))))
	require.False(t, InYearRange(tzaware.Decompose(time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC))))
	// local year 9999, UTC year 10000
	require.False(t, InYearRange(tzaware.Decompose(time.Date(9999, 12, 31, 20, 0, 0, 0, time.FixedZone("", -5*3600)))))
	require.False(t, InYearRange(tzaware.Decompose(time.Date(0, 12, 31, 0, 0, 0, 0, time.UTC))))
}
