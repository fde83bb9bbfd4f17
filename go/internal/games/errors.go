package games

import "errors"

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrCommunityNotFound = errors.New("community not found")
	ErrInvalidCapacity   = errors.New("capacity must be greater than zero")
	ErrInvalidWaitlist   = errors.New("waitlist capacity cannot be negative")
)
