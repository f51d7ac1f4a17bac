package convert

import (
	json "github.com/goccy/go-json"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// protoDoc holds each field in its canonical protojson form.
type protoDoc struct {
	UTC    json.RawMessage `json:"utc,omitempty"`
	Zone   json.RawMessage `json:"zone,omitempty"`
	Offset json.RawMessage `json:"offset,omitempty"`
}

// MarshalJSON writes the present fields in their protojson mapping: the timestamp as
// RFC 3339 text, the zone as a string and the offset as seconds ("-28800s").
func (p ProtoInstant) MarshalJSON() ([]byte, error) {
	var (
		d   protoDoc
		err error
	)
	if p.UTC != nil {
		if d.UTC, err = protojson.Marshal(p.UTC); err != nil {
			return nil, err
		}
	}
	if p.Zone != nil {
		if d.Zone, err = protojson.Marshal(p.Zone); err != nil {
			return nil, err
		}
	}
	if p.Offset != nil {
		if d.Offset, err = protojson.Marshal(p.Offset); err != nil {
			return nil, err
		}
	}
	return json.Marshal(d)
}

// UnmarshalJSON reads the output of MarshalJSON. Absent keys leave fields nil.
func (p *ProtoInstant) UnmarshalJSON(b []byte) error {
	var d protoDoc
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	*p = ProtoInstant{}
	if len(d.UTC) > 0 {
		p.UTC = &timestamppb.Timestamp{}
		if err := protojson.Unmarshal(d.UTC, p.UTC); err != nil {
			return err
		}
	}
	if len(d.Zone) > 0 {
		p.Zone = &wrapperspb.StringValue{}
		if err := protojson.Unmarshal(d.Zone, p.Zone); err != nil {
			return err
		}
	}
	if len(d.Offset) > 0 {
		p.Offset = &durationpb.Duration{}
		if err := protojson.Unmarshal(d.Offset, p.Offset); err != nil {
			return err
		}
	}
	return nil
}
