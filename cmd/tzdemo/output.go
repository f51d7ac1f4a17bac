package main

import (
	"fmt"
	"io"

	"time"

	json "github.com/goccy/go-json"
	"github.com/gofrs/uuid/v5"
	"gopkg.in/yaml.v3"

	"github.com/and161185/tzaware/internal/convert"
	"github.com/and161185/tzaware/internal/model"
)

// entryView adds the offset check to an entry for display.
type entryView struct {
	model.Entry   `yaml:",inline"`
	OffsetMatches *bool `json:"offset_matches,omitempty" yaml:"offset_matches,omitempty"`
}

func viewOf(e model.Entry) entryView {
	v := entryView{Entry: e}
	if match, known := e.OffsetMatches(); known {
		v.OffsetMatches = &match
	}
	return v
}

func viewsOf(es []model.Entry) []entryView {
	out := make([]entryView, 0, len(es))
	for _, e := range es {
		out = append(out, viewOf(e))
	}
	return out
}

// protoEntry is an entry with its instant in protobuf well-known types.
type protoEntry struct {
	ID             uuid.UUID            `json:"id"`
	Info           string               `json:"info"`
	ExpectedOffset *int32               `json:"expected_offset,omitempty"`
	At             convert.ProtoInstant `json:"at"`
	CreatedAt      time.Time            `json:"created_at"`
	OffsetMatches  *bool                `json:"offset_matches,omitempty"`
}

type protoReport struct {
	Count   int64        `json:"count"`
	Entries []protoEntry `json:"entries"`
}

func protoOf(v entryView) protoEntry {
	return protoEntry{
		ID:             v.ID,
		Info:           v.Info,
		ExpectedOffset: v.ExpectedOffset,
		At:             convert.ToProto(v.At),
		CreatedAt:      v.CreatedAt,
		OffsetMatches:  v.OffsetMatches,
	}
}

// protoValue maps entry views to their protobuf form; other values pass through.
func protoValue(v any) any {
	switch v := v.(type) {
	case entryView:
		return protoOf(v)
	case []entryView:
		out := make([]protoEntry, 0, len(v))
		for _, e := range v {
			out = append(out, protoOf(e))
		}
		return out
	case demoReport:
		return protoReport{Count: v.Count, Entries: protoValue(v.Entries).([]protoEntry)}
	}
	return v
}

// printer writes values in the configured format.
type printer struct {
	w      io.Writer
	format string
}

func (p printer) print(v any) error {
	switch p.format {
	case "yaml":
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json", "", "protojson":
		if p.format == "protojson" {
			v = protoValue(v)
		}
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(p.w, "%s\n", b)
		return err
	}
	return fmt.Errorf("unknown output format %q", p.format)
}
