package extract

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedTimestamp reports a timestamp field that does not match its
// expected encoding. Callers treat it exactly like a non-matching line: the
// line is dropped and counted, never fatal.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

const (
	// Apache access log clock, e.g. "10/Oct/2020:13:55:36 +0000".
	apacheLayout = "02/Jan/2006:15:04:05 -0700"
	// HDFS compact date+time pair, e.g. "081109" + "203518". No zone on the
	// wire; UTC by ingest convention.
	compactLayout = "060102150405"
)

// parseApacheTime parses the bracketed access-log timestamp, offset included.
func parseApacheTime(s string) (time.Time, error) {
	t, err := time.Parse(apacheLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, s)
	}
	return t, nil
}

// parseCompactTime parses the six-digit date and six-digit time fields used by
// both HDFS formats.
func parseCompactTime(date, clock string) (time.Time, error) {
	if len(date) != 6 || len(clock) != 6 {
		return time.Time{}, fmt.Errorf("%w: %q %q", ErrMalformedTimestamp, date, clock)
	}
	t, err := time.ParseInLocation(compactLayout, date+clock, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q", ErrMalformedTimestamp, date, clock)
	}
	return t, nil
}
