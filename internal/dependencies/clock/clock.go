// Package clock supplies the current instant to everything that stamps
// records, signs tokens or meters write rates.
package clock

import "time"

// Clock reports the current instant
type Clock interface {
	Now() time.Time
}

// System reads the machine clock. Stored timestamps are always UTC.
type System struct{}

// New returns the machine clock
func New() System {
	return System{}
}

// Now returns the current instant in UTC
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Since reports how long ago t was according to c
func Since(c Clock, t time.Time) time.Duration {
	return c.Now().Sub(t)
}
