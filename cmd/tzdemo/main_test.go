package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/and161185/tzaware/internal/convert"
	"github.com/and161185/tzaware/tzaware"
)

func nopLogger(string) (*zap.Logger, error) { return zap.NewNop(), nil }

func execute(t *testing.T, a *app, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer
	a.out = &out
	root := a.command()
	root.SetArgs(args)
	require.NoError(t, root.ExecuteContext(context.Background()), "args %v", args)
	return out.Bytes()
}

func TestDemo_SQLite(t *testing.T) {
	a := newApp(nil, nopLogger)
	now := time.Date(2010, 1, 15, 16, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	out := execute(t, a, "--driver", "sqlite", "--dsn", ":memory:", "demo")

	var rep demoReport
	require.NoError(t, json.Unmarshal(out, &rep))
	require.EqualValues(t, 4, rep.Count)
	require.Len(t, rep.Entries, 4)

	require.Equal(t, "null date", rep.Entries[0].Info)
	require.True(t, rep.Entries[0].At.IsEmpty())
	require.Nil(t, rep.Entries[0].OffsetMatches)

	byInfo := map[string]entryView{}
	for _, e := range rep.Entries {
		byInfo[e.Info] = e
	}

	pst := byInfo["PST date"]
	off, ok := pst.At.Offset()
	require.True(t, ok)
	require.Equal(t, -28800, off)
	require.NotNil(t, pst.OffsetMatches)
	require.True(t, *pst.OffsetMatches)
	zone, _ := pst.At.Zone()
	require.Equal(t, "PST", zone)

	nz := byInfo["New Zealand date"]
	off, _ = nz.At.Offset()
	require.Equal(t, 13*3600, off, "January is NZDT")
	local, _ := nz.At.Time()
	require.Equal(t, 5, local.Hour())
	require.True(t, local.Equal(now))

	first := byInfo["first date"]
	require.True(t, *first.OffsetMatches)
}

func TestAddGetDelete_SQLiteFile(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tz.db")
	common := []string{"--driver", "sqlite", "--dsn", dsn}
	run := func(args ...string) []byte {
		return execute(t, newApp(nil, nopLogger), append(common, args...)...)
	}

	run("migrate")

	var added entryView
	require.NoError(t, json.Unmarshal(run("add", "--info", "rome", "--at", "2010-01-15T08:00:00+01:00", "--expected-offset", "3600"), &added))
	require.True(t, *added.OffsetMatches)

	var got entryView
	require.NoError(t, yaml.Unmarshal(run("--output", "yaml", "get", added.ID.String()), &got))
	require.Equal(t, added.ID, got.ID)
	require.True(t, added.At.Equal(got.At))
	off, _ := got.At.Offset()
	require.Equal(t, 3600, off)

	var cnt map[string]int64
	require.NoError(t, json.Unmarshal(run("count"), &cnt))
	require.EqualValues(t, 1, cnt["count"])

	run("delete", added.ID.String())
	require.NoError(t, json.Unmarshal(run("count"), &cnt))
	require.EqualValues(t, 0, cnt["count"])
}

func TestProtoJSONOutput(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tz.db")
	common := []string{"--driver", "sqlite", "--dsn", dsn}
	execute(t, newApp(nil, nopLogger), append(common, "migrate")...)

	out := execute(t, newApp(nil, nopLogger), append(common, "--output", "protojson",
		"add", "--info", "PST date", "--at", "2010-01-15T08:00:00-08:00", "--expected-offset", "-28800")...)

	var raw struct {
		At map[string]string `json:"at"`
	}
	require.NoError(t, json.Unmarshal(out, &raw))
	require.Equal(t, "2010-01-15T16:00:00Z", raw.At["utc"])
	require.Equal(t, "-28800s", raw.At["offset"])
	require.NotContains(t, raw.At, "zone", "numeric offsets carry no label")

	var e protoEntry
	require.NoError(t, json.Unmarshal(out, &e))
	f, err := convert.FromProto(e.At)
	require.NoError(t, err)
	local, ok := tzaware.FromFields(f).Time()
	require.True(t, ok)
	require.Equal(t, "2010-01-15T08:00:00-08:00", local.Format(time.RFC3339))
	require.True(t, *e.OffsetMatches)

	out = execute(t, newApp(nil, nopLogger), append(common, "--output", "protojson", "list")...)
	var list []protoEntry
	require.NoError(t, json.Unmarshal(out, &list))
	require.Len(t, list, 1)
	require.Equal(t, e.ID, list[0].ID)
}

func TestAdd_NaivePolicy(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "tz.db")
	execute(t, newApp(nil, nopLogger), "--driver", "sqlite", "--dsn", dsn, "migrate")

	root := newApp(&bytes.Buffer{}, nopLogger).command()
	root.SetArgs([]string{"--driver", "sqlite", "--dsn", dsn, "add", "--info", "naive", "--at", "2010-01-15 08:00:00"})
	require.Error(t, root.Execute())

	var e entryView
	out := execute(t, newApp(nil, nopLogger), "--driver", "sqlite", "--dsn", dsn, "--naive", "assume-utc", "add", "--info", "naive", "--at", "2010-01-15 08:00:00")
	require.NoError(t, json.Unmarshal(out, &e))
	utc, _ := e.At.UTC()
	require.True(t, utc.Equal(time.Date(2010, 1, 15, 8, 0, 0, 0, time.UTC)))
}

func TestApplyFlags(t *testing.T) {
	a := newApp(nil, nopLogger)
	root := a.command()
	require.NoError(t, root.ParseFlags([]string{"--driver", "redis", "--output", "yaml"}))

	base := a.flags
	base.Driver, base.Output, base.DSN = "postgres", "json", "from-file"
	cfg := a.applyFlags(root, base)
	require.Equal(t, "redis", cfg.Driver)
	require.Equal(t, "yaml", cfg.Output)
	require.Equal(t, "from-file", cfg.DSN, "unset flags keep loaded values")
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printer{w: &buf, format: "yaml"}.print(map[string]int{"count": 2}))
	require.Equal(t, "count: 2\n", buf.String())

	buf.Reset()
	require.NoError(t, printer{w: &buf, format: "json"}.print(map[string]int{"count": 2}))
	require.JSONEq(t, `{"count":2}`, buf.String())

	buf.Reset()
	require.NoError(t, printer{w: &buf, format: "protojson"}.print(map[string]int{"count": 2}))
	require.JSONEq(t, `{"count":2}`, buf.String())

	require.Error(t, printer{w: &buf, format: "xml"}.print(1))
}
