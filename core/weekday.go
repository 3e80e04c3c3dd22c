package core

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Weekday indexes days Monday=0 .. Sunday=6, matching the offset of a day
// within a planning week (planning start + Weekday days).
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// SchoolDays are the weekdays schedules are materialized for;
// weekends are excluded by policy.
var SchoolDays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayNames[d]
}

func ParseWeekday(s string) (Weekday, error) {
	name := CleanString(s)
	for i, n := range weekdayNames {
		if strings.EqualFold(n, name) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

// WeekdayOf converts a date to its Weekday (Monday=0).
func WeekdayOf(t time.Time) Weekday {
	wd := int(t.Weekday()) // Sunday=0 in time pkg
	return Weekday((wd + 6) % 7)
}

func (d Weekday) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Weekday) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseWeekday(name)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// WeekdaySet is a set of weekdays backed by a bitmask.
type WeekdaySet uint8

func NewWeekdaySet(days ...Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

func (s WeekdaySet) Has(d Weekday) bool       { return s&(1<<uint(d)) != 0 }
func (s WeekdaySet) Add(d Weekday) WeekdaySet { return s | (1 << uint(d)) }
func (s WeekdaySet) IsEmpty() bool            { return s == 0 }

func (s WeekdaySet) Days() []Weekday {
	days := make([]Weekday, 0, 7)
	for d := Monday; d <= Sunday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

func (s WeekdaySet) String() string {
	names := make([]string, 0, 7)
	for _, d := range s.Days() {
		names = append(names, d.String())
	}
	return strings.Join(names, ",")
}

func ParseWeekdaySet(s string) (WeekdaySet, error) {
	var set WeekdaySet
	if CleanString(s) == "" {
		return set, nil
	}
	for _, part := range strings.Split(s, ",") {
		d, err := ParseWeekday(part)
		if err != nil {
			return 0, err
		}
		set = set.Add(d)
	}
	return set, nil
}

// Value stores the set as a comma-joined list of day names.
func (s WeekdaySet) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *WeekdaySet) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*s = 0
		return nil
	case string:
		set, err := ParseWeekdaySet(v)
		if err != nil {
			return err
		}
		*s = set
		return nil
	case []byte:
		return s.Scan(string(v))
	}
	return fmt.Errorf("cannot scan %T into WeekdaySet", src)
}

func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, 7)
	for _, d := range s.Days() {
		names = append(names, d.String())
	}
	return json.Marshal(names)
}

func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var set WeekdaySet
	for _, n := range names {
		d, err := ParseWeekday(n)
		if err != nil {
			return err
		}
		set = set.Add(d)
	}
	*s = set
	return nil
}
