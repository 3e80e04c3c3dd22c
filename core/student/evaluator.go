package student

import (
	"time"

	"github.com/casitakids/backend/core"
)

// Status is a student's standing on a given date for one track.
type Status int

const (
	StatusNotEnrolled Status = iota
	StatusActive
	StatusEnded
	// StatusTransitionPending is reported by the active-window pass when
	// the date is governed by the transition window instead.
	StatusTransitionPending
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "ACTIVE"
	case StatusEnded:
		return "ENDED"
	case StatusTransitionPending:
		return "TRANSITION_PENDING"
	default:
		return "NOT_ENROLLED"
	}
}

// Window selects which set of enrollment facts governs a date.
type Window int

const (
	WindowActive Window = iota
	WindowTransition
)

// WindowOn picks the governing window for date: the transition window
// takes over from its start date onward (inclusive), and a date is never
// governed by both. All comparisons are on midnight-normalized dates.
func (s Student) WindowOn(date time.Time) Window {
	if s.TransitionStartDate == nil {
		return WindowActive
	}
	if core.Midnight(date).Before(core.Midnight(*s.TransitionStartDate)) {
		return WindowActive
	}
	return WindowTransition
}

// EvaluateWindow runs a single evaluation pass against one window's
// facts. The active pass reports StatusTransitionPending for dates the
// transition window governs; the transition pass never does.
func (s Student) EvaluateWindow(track core.Track, date time.Time, w Window) Status {
	date = core.Midnight(date)
	day := core.WeekdayOf(date)

	if w == WindowTransition {
		if !s.TransitionDays(track).Has(day) {
			return StatusNotEnrolled
		}
		return StatusActive
	}

	if !s.Days(track).Has(day) {
		return StatusNotEnrolled
	}
	if s.EndDate != nil && date.After(core.Midnight(*s.EndDate)) {
		return StatusEnded
	}
	if s.WindowOn(date) == WindowTransition {
		return StatusTransitionPending
	}
	if s.StartDate != nil && date.Before(core.Midnight(*s.StartDate)) {
		return StatusNotEnrolled
	}
	return StatusActive
}

// Evaluate reports the student's standing on date for track, evaluated
// against whichever window governs the date. Date comparisons are
// inclusive on both bounds: active means startDate <= d <= endDate, and
// the transition window applies from d >= transitionStartDate.
func (s Student) Evaluate(track core.Track, date time.Time) Status {
	return s.EvaluateWindow(track, date, s.WindowOn(date))
}

// ActiveOn reports whether the student belongs on a roster of classID
// for track on date: the governing window's evaluation must be ACTIVE
// and the governing window's class set must contain classID. This is
// the single membership predicate both the generator and the
// synchronizer go through.
func (s Student) ActiveOn(track core.Track, classID int, date time.Time) bool {
	if s.Evaluate(track, date) != StatusActive {
		return false
	}
	if s.WindowOn(date) == WindowTransition {
		return s.HasTransitionClass(classID)
	}
	return s.HasClass(classID)
}
