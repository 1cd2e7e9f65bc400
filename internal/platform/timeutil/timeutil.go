// Package timeutil provides UTC-first time handling for artifacts.
//
// Timestamps are stored in a canonical ISO 8601 form with a Z suffix and an
// optional fractional-second part. Precision is truncated to microseconds so
// that every timestamp survives a serialize/deserialize round trip unchanged.
package timeutil

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	layoutSeconds    = "2006-01-02T15:04:05Z07:00"
	layoutFractional = "2006-01-02T15:04:05.999999Z07:00"
)

// Now returns the current UTC time truncated to microsecond precision with
// the monotonic clock reading stripped.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Format renders a time in the canonical UTC form. The fractional-second
// part is omitted when zero.
func Format(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond() == 0 {
		return t.Format(layoutSeconds)
	}
	return t.Format(layoutFractional)
}

// Parse reads a canonical or offset-bearing ISO 8601 timestamp and
// normalizes it to UTC.
func Parse(value string) (time.Time, error) {
	for _, layout := range []string{layoutFractional, layoutSeconds} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", value)
}

// Time is a UTC timestamp that serializes to the canonical form.
type Time struct {
	time.Time
}

// New wraps a time, normalizing it to UTC microsecond precision.
func New(t time.Time) Time {
	return Time{t.UTC().Truncate(time.Microsecond)}
}

// MarshalYAML renders the timestamp in the canonical UTC form.
func (t Time) MarshalYAML() (any, error) {
	return Format(t.Time), nil
}

// UnmarshalYAML parses a canonical timestamp, normalizing to UTC.
func (t *Time) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := Parse(node.Value)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}
