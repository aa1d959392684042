package sqlconn

import (
	"fmt"
	"time"
)

// timestampLayouts covers SQLite's CURRENT_TIMESTAMP text and the forms the
// drivers print when they hand back a string instead of a time.Time.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	time.RFC3339Nano,
}

// timestamp scans a ts column. lib/pq returns time.Time; SQLite may return
// the stored text when the column type is not visible, e.g. under RETURNING.
type timestamp time.Time

// Scan implements sql.Scanner.
func (t *timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*t = timestamp(v)
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("scan timestamp: unsupported type %T", src)
	}
}

func (t *timestamp) parse(s string) error {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = timestamp(parsed)
			return nil
		}
	}
	return fmt.Errorf("scan timestamp: unrecognized format %q", s)
}
