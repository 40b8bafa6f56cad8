package store

import (
	"fmt"
	"time"
)

// Layouts sqlite drivers use when a datetime loses its declared column
// type, as happens for min/max aggregates.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// scanTime accepts datetimes returned either as time.Time or as text.
type scanTime struct {
	time.Time
}

func (t *scanTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil

	case time.Time:
		t.Time = v.UTC()
		return nil

	case []byte:
		return t.parse(string(v))

	case string:
		return t.parse(v)

	default:
		return fmt.Errorf("unsupported datetime type %T", src)
	}
}

func (t *scanTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}

	return fmt.Errorf("unrecognized datetime %q", s)
}
