package core

import "time"

// Clock is the single source of "now" for the scheduling core.
// Injected everywhere a date comparison happens so tests can pin time.
type Clock interface {
	Now() time.Time
	// Today returns the current date at midnight UTC.
	Today() time.Time
}

type realClock struct{}

func NewClock() Clock { return realClock{} }

func (realClock) Now() time.Time   { return time.Now().UTC() }
func (realClock) Today() time.Time { return Midnight(time.Now().UTC()) }

// FixedClock always reports the same instant; for tests.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time   { return c.T }
func (c FixedClock) Today() time.Time { return Midnight(c.T) }

// Midnight strips the time-of-day from t, in UTC.
// All enrollment-window and schedule date comparisons go through this.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
