package domain

import (
	"fmt"
	"time"
)

// timestampLayouts are the ISO-8601 shapes found in existing documents: the
// original writer emitted naive local timestamps with microseconds, later
// writers emit RFC 3339 with a zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// FormatTimestamp renders a timestamp the way new document entries store it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp parses a stored timestamp, accepting every layout that has
// ever been written to the documents.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}
