// Package convert maps the composite timestamp onto protobuf well-known types so it
// can be embedded in messages without losing the captured offset.
package convert

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/and161185/tzaware/tzaware"
)

// maxOffset bounds accepted offsets (exclusive).
const maxOffset = 24 * time.Hour

// ProtoInstant carries the three fields as well-known types. Nil fields are absent.
type ProtoInstant struct {
	UTC    *timestamppb.Timestamp
	Zone   *wrapperspb.StringValue
	Offset *durationpb.Duration
}

// ToProto converts an Instant. The empty instant gives a ProtoInstant with all fields nil.
func ToProto(in tzaware.Instant) ProtoInstant {
	var p ProtoInstant
	if utc, ok := in.UTC(); ok {
		p.UTC = timestamppb.New(utc)
	}
	if zone, ok := in.Zone(); ok {
		p.Zone = wrapperspb.String(zone)
	}
	if off, ok := in.Offset(); ok {
		p.Offset = durationpb.New(time.Duration(off) * time.Second)
	}
	return p
}

// FromProto converts back, validating the timestamp and the offset. Fields are
// otherwise taken verbatim; apply a tzaware.Policy to enforce completeness.
func FromProto(p ProtoInstant) (tzaware.Fields, error) {
	var (
		utc    *time.Time
		zone   *string
		offset *int32
	)
	if p.UTC != nil {
		if err := p.UTC.CheckValid(); err != nil {
			return tzaware.Fields{}, fmt.Errorf("invalid utc: %w", err)
		}
		t := p.UTC.AsTime()
		utc = &t
	}
	if p.Zone != nil {
		z := p.Zone.GetValue()
		zone = &z
	}
	if p.Offset != nil {
		off, err := offsetSeconds(p.Offset)
		if err != nil {
			return tzaware.Fields{}, err
		}
		offset = &off
	}
	return tzaware.NewFields(utc, zone, offset), nil
}

func offsetSeconds(d *durationpb.Duration) (int32, error) {
	if err := d.CheckValid(); err != nil {
		return 0, fmt.Errorf("invalid offset: %w", err)
	}
	if d.GetNanos() != 0 {
		return 0, errors.New("invalid offset: fractional seconds")
	}
	dur := d.AsDuration()
	if dur <= -maxOffset || dur >= maxOffset {
		return 0, fmt.Errorf("invalid offset: %s out of range", dur)
	}
	return int32(d.GetSeconds()), nil
}
