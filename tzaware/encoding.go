package tzaware

import (
	"bytes"
	"time"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// instantDoc is the document form of an Instant. Local is informational and
// ignored when decoding.
type instantDoc struct {
	UTC    *time.Time `json:"utc" yaml:"utc"`
	Zone   *string    `json:"zone,omitempty" yaml:"zone,omitempty"`
	Offset *int32     `json:"offset_seconds,omitempty" yaml:"offset_seconds,omitempty"`
	Local  string     `json:"local,omitempty" yaml:"local,omitempty"`
}

func (in Instant) doc() *instantDoc {
	if !in.hasUTC && !in.hasZone && !in.hasOffset {
		return nil
	}
	d := &instantDoc{}
	if in.hasUTC {
		utc := in.utc.UTC()
		d.UTC = &utc
		d.Local = in.TimeOrZero().Format(time.RFC3339Nano)
	}
	if in.hasZone {
		zone := in.zone
		d.Zone = &zone
	}
	if in.hasOffset {
		off := in.offset
		d.Offset = &off
	}
	return d
}

func (d *instantDoc) instant() Instant {
	if d.UTC != nil {
		utc := d.UTC.UTC()
		d.UTC = &utc
	}
	return FromFields(NewFields(d.UTC, d.Zone, d.Offset))
}

// MarshalJSON encodes the empty instant as null and any other as an object.
func (in Instant) MarshalJSON() ([]byte, error) {
	d := in.doc()
	if d == nil {
		return []byte("null"), nil
	}
	return json.Marshal(d)
}

// UnmarshalJSON decodes the output of MarshalJSON. Fields are taken verbatim.
func (in *Instant) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*in = Instant{}
		return nil
	}
	var d instantDoc
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	*in = d.instant()
	return nil
}

// MarshalYAML encodes the empty instant as null and any other as a mapping.
func (in Instant) MarshalYAML() (any, error) {
	d := in.doc()
	if d == nil {
		return nil, nil
	}
	return d, nil
}

// UnmarshalYAML decodes the output of MarshalYAML.
func (in *Instant) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*in = Instant{}
		return nil
	}
	var d instantDoc
	if err := node.Decode(&d); err != nil {
		return err
	}
	*in = d.instant()
	return nil
}
