package core

import (
	"strings"
	"time"
)

// Time unmarshals API timestamps. The backend emits naive UTC timestamps
// (no zone suffix); those are parsed as UTC instead of local time. Zoned
// RFC 3339 values pass through as-is.
type Time struct {
	time.Time
}

const naiveLayout = "2006-01-02T15:04:05.999999999"

func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}
