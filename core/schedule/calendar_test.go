package schedule

import (
	"testing"
	"time"

	"github.com/casitakids/backend/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekRange(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     time.Month
		week      int
		wantStart time.Time
		wantEnd   time.Time
		wantErr   error
	}{
		// March 1, 2024 is a Friday: week 1 reaches back into February.
		{name: "first week anchored on first Friday", year: 2024, month: time.March, week: 1,
			wantStart: date(2024, time.February, 26), wantEnd: date(2024, time.March, 1)},
		{name: "second week", year: 2024, month: time.March, week: 2,
			wantStart: date(2024, time.March, 4), wantEnd: date(2024, time.March, 8)},
		{name: "last week of a 5-week month", year: 2024, month: time.March, week: 5,
			wantStart: date(2024, time.March, 25), wantEnd: date(2024, time.March, 29)},
		{name: "week 6 of a 5-week month", year: 2024, month: time.March, week: 6,
			wantErr: ErrWeekOutOfRange},
		{name: "week 5 of a 4-week month", year: 2024, month: time.February, week: 5,
			wantErr: ErrWeekOutOfRange},
		{name: "last week of a 4-week month", year: 2024, month: time.February, week: 4,
			wantStart: date(2024, time.February, 19), wantEnd: date(2024, time.February, 23)},
		{name: "week zero", year: 2024, month: time.March, week: 0, wantErr: ErrWeekOutOfRange},
		{name: "negative week", year: 2024, month: time.March, week: -1, wantErr: ErrWeekOutOfRange},
		// September 1, 2025 is a Monday and September 5 a Friday.
		{name: "month starting on a Monday", year: 2025, month: time.September, week: 1,
			wantStart: date(2025, time.September, 1), wantEnd: date(2025, time.September, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := WeekRange(tt.year, tt.month, tt.week)
			if err != tt.wantErr {
				t.Fatalf("WeekRange() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if !start.Equal(tt.wantStart) {
				t.Errorf("WeekRange() start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("WeekRange() end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestWeekRange_properties(t *testing.T) {
	for month := time.January; month <= time.December; month++ {
		for week := 1; week <= maxWeeksPerMonth; week++ {
			start, end, err := WeekRange(2024, month, week)
			if err == ErrWeekOutOfRange {
				continue
			}
			if err != nil {
				t.Fatalf("WeekRange(2024, %v, %d) error = %v", month, week, err)
			}
			if core.WeekdayOf(start) != core.Monday {
				t.Errorf("WeekRange(2024, %v, %d) start %v is not a Monday", month, week, start)
			}
			if core.WeekdayOf(end) != core.Friday {
				t.Errorf("WeekRange(2024, %v, %d) end %v is not a Friday", month, week, end)
			}
			if got := end.Sub(start); got != 4*24*time.Hour {
				t.Errorf("WeekRange(2024, %v, %d) span = %v, want 96h", month, week, got)
			}
			if end.Month() != month {
				t.Errorf("WeekRange(2024, %v, %d) end %v falls outside the month", month, week, end)
			}
		}
	}
}

func TestDateForWeekday(t *testing.T) {
	start := date(2024, time.March, 4) // a Monday
	tests := []struct {
		day  core.Weekday
		want time.Time
	}{
		{core.Monday, date(2024, time.March, 4)},
		{core.Wednesday, date(2024, time.March, 6)},
		{core.Friday, date(2024, time.March, 8)},
	}
	for _, tt := range tests {
		if got := DateForWeekday(start, tt.day); !got.Equal(tt.want) {
			t.Errorf("DateForWeekday(%v, %v) = %v, want %v", start, tt.day, got, tt.want)
		}
	}
}
