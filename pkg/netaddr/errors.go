package netaddr

import "errors"

// Failures of individual strategies. The Resolver recovers all of them by
// moving on to the next strategy.
var (
	ErrCommandUnavailable = errors.New("command unavailable")
	ErrCommandTimeout     = errors.New("command timed out")
	ErrNoMatch            = errors.New("no matching address")
	ErrSocketUnreachable  = errors.New("socket probe failed")
)
