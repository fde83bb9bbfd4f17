package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var kickoff = time.Date(2025, time.June, 14, 19, 0, 0, 0, time.UTC)

func TestJoinCutoff(t *testing.T) {
	assert.Equal(t, kickoff.Add(-90*time.Minute), JoinCutoff(kickoff, 90))
	assert.Equal(t, kickoff, JoinCutoff(kickoff, 0))
}

func TestConfirmationWindowStart(t *testing.T) {
	assert.Equal(t, kickoff.Add(-48*time.Hour), ConfirmationWindowStart(kickoff, 48))
}

func TestConfigured(t *testing.T) {
	tests := []struct {
		name        string
		offsetMin   int
		windowHours int
		want        bool
	}{
		{"typical window", 60, 48, true},
		{"cutoff equals window start", 60, 1, false},
		{"cutoff before window start", 120, 1, false},
		{"zero window", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Configured(kickoff, tt.offsetMin, tt.windowHours))
		})
	}
}

func TestWithin(t *testing.T) {
	const offsetMin, windowHours = 60, 48

	start := ConfirmationWindowStart(kickoff, windowHours)
	cutoff := JoinCutoff(kickoff, offsetMin)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"before window", start.Add(-time.Second), false},
		{"at window start", start, true},
		{"inside window", kickoff.Add(-2 * time.Hour), true},
		{"just before cutoff", cutoff.Add(-time.Second), true},
		{"at cutoff", cutoff, false},
		{"after kickoff", kickoff.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Within(tt.now, kickoff, offsetMin, windowHours))
		})
	}
}

func TestWithinUnconfiguredFailsClosed(t *testing.T) {
	// Cutoff not strictly after window start: no instant is inside.
	assert.False(t, Within(kickoff.Add(-30*time.Minute), kickoff, 120, 2))
}

func TestResolveLocal(t *testing.T) {
	// Mid-June, US eastern daylight time (UTC-4).
	ref := time.Date(2025, time.June, 14, 12, 0, 0, 0, time.UTC)
	got, err := ResolveLocal(ref, "19:00", "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.June, 14, 23, 0, 0, 0, time.UTC), got.UTC())

	// Mid-January, standard time (UTC-5): same wall clock, different instant.
	ref = time.Date(2025, time.January, 14, 12, 0, 0, 0, time.UTC)
	got, err = ResolveLocal(ref, "19:00", "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), got.UTC())
}

func TestResolveLocalUsesZoneCalendarDay(t *testing.T) {
	// 01:00 UTC on the 15th is still the 14th in New York; the resolved
	// instant must land on the 14th's wall clock there.
	ref := time.Date(2025, time.June, 15, 1, 0, 0, 0, time.UTC)
	got, err := ResolveLocal(ref, "09:00", "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.June, 14, 13, 0, 0, 0, time.UTC), got.UTC())
}

func TestResolveLocalErrors(t *testing.T) {
	ref := time.Now()
	_, err := ResolveLocal(ref, "19:00", "Not/AZone")
	assert.Error(t, err)

	_, err = ResolveLocal(ref, "25:99", "UTC")
	assert.Error(t, err)
}
