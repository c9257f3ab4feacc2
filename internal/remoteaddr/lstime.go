package remoteaddr

import (
	"fmt"
	"time"
)

// ParseLsTime parses an `ls -l`-style timestamp, which has two forms:
// "Nov 5 2018" (an explicit year, for entries older than the current
// year) or "Nov 5 16:32" (hour:minute, implying referenceYear). The
// year is taken as an explicit parameter rather than time.Now() so the
// function stays a pure, testable transform (spec.md §8 scenario 5
// pins a "2020 run" for the hour:minute form).
//
// The returned time is in UTC, matching the historical ls convention
// of treating the timestamp as naive (no timezone offset recoverable
// from the listing).
func ParseLsTime(tm string, referenceYear int) (time.Time, error) {
	if t, err := time.Parse("Jan 2 2006", tm); err == nil {
		return t, nil
	}
	withYear := fmt.Sprintf("%s %d", tm, referenceYear)
	t, err := time.Parse("Jan 2 15:04 2006", withYear)
	if err != nil {
		return time.Time{}, fmt.Errorf("lstime: cannot parse %q: %w", tm, err)
	}
	return t, nil
}

// FormatDuration renders a duration as "sec.ms3" (millisecond
// precision, zero-padded to three digits), used in the transfer
// engine's completion log line.
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	secs := ms / 1000
	rem := ms % 1000
	return fmt.Sprintf("%d.%03d", secs, rem)
}
