package schedule

import (
	"errors"
	"time"

	"github.com/casitakids/backend/core"
)

// ErrWeekOutOfRange is returned when the requested week number does not
// exist within the target month. Never clamped.
var ErrWeekOutOfRange = errors.New("the specified week does not exist for the given month")

// WeekRange converts (year, month, weekNumber) into the Monday/Friday
// pair of that planning week. Week 1 starts on the Monday of the week
// containing the first Friday of the month; subsequent weeks advance
// Monday by Monday for as long as the week's Friday stays inside the
// month. weekNumber is 1-based.
func WeekRange(year int, month time.Month, weekNumber int) (start, end time.Time, err error) {
	if weekNumber < 1 {
		return time.Time{}, time.Time{}, ErrWeekOutOfRange
	}

	firstFriday := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for core.WeekdayOf(firstFriday) != core.Friday {
		firstFriday = firstFriday.AddDate(0, 0, 1)
	}

	monday := firstFriday.AddDate(0, 0, -int(core.WeekdayOf(firstFriday)))

	for week := 1; ; week++ {
		friday := monday.AddDate(0, 0, 4)
		if friday.Month() != month {
			return time.Time{}, time.Time{}, ErrWeekOutOfRange
		}
		if week == weekNumber {
			return monday, friday, nil
		}
		monday = monday.AddDate(0, 0, 7)
	}
}

// DateForWeekday returns the concrete date of a weekday within a
// planning week: the planning start (a Monday) plus the weekday index.
// The result is midnight-normalized like every date in the core.
func DateForWeekday(planningStart time.Time, day core.Weekday) time.Time {
	return core.Midnight(planningStart).AddDate(0, 0, int(day))
}
