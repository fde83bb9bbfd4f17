package timewindow

import (
	"fmt"
	"time"
)

// ResolveLocal resolves a wall-clock time ("19:00") in a named timezone to
// an absolute instant on the calendar day that ref falls on in that zone.
// Resolving through the zone's own calendar keeps the wall clock stable
// across DST transitions, where a fixed UTC offset would drift by an hour.
func ResolveLocal(ref time.Time, wallClock, tzName string) (time.Time, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown timezone %q: %w", tzName, err)
	}

	parsed, err := time.Parse("15:04", wallClock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid wall-clock time %q: %w", wallClock, err)
	}

	year, month, day := ref.In(loc).Date()
	return time.Date(year, month, day, parsed.Hour(), parsed.Minute(), 0, 0, loc), nil
}
