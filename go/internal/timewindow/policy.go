// Package timewindow computes the time gates around a game's kickoff: the
// join cutoff, the attendance-confirmation window, and localized notice
// times. Everything here is pure; callers inject "now".
package timewindow

import "time"

// JoinCutoff is the instant after which joining the queue is closed.
func JoinCutoff(kickoff time.Time, offsetMin int) time.Time {
	return kickoff.Add(-time.Duration(offsetMin) * time.Minute)
}

// ConfirmationWindowStart is the instant at which rostered players may begin
// confirming attendance.
func ConfirmationWindowStart(kickoff time.Time, windowHours int) time.Time {
	return kickoff.Add(-time.Duration(windowHours) * time.Hour)
}

// Configured reports whether the confirmation window is usable for a game.
// The join cutoff must fall strictly after the window start; otherwise the
// window is empty and every action gated on it fails closed.
func Configured(kickoff time.Time, offsetMin, windowHours int) bool {
	return JoinCutoff(kickoff, offsetMin).After(ConfirmationWindowStart(kickoff, windowHours))
}

// Within reports whether now falls inside the half-open confirmation window
// [windowStart, joinCutoff).
func Within(now, kickoff time.Time, offsetMin, windowHours int) bool {
	if !Configured(kickoff, offsetMin, windowHours) {
		return false
	}
	start := ConfirmationWindowStart(kickoff, windowHours)
	cutoff := JoinCutoff(kickoff, offsetMin)
	return !now.Before(start) && now.Before(cutoff)
}
