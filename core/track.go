package core

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Track is one of the three independent enrollment dimensions a student
// has: the main "enrolled" program, before-school care and after-school
// care. A class belongs to exactly one track; a student carries one
// day-set per track.
type Track int

const (
	TrackEnrolled Track = iota
	TrackBeforeSchool
	TrackAfterSchool
)

// Tracks lists all tracks, in evaluation order.
var Tracks = []Track{TrackEnrolled, TrackBeforeSchool, TrackAfterSchool}

var trackNames = [...]string{"ENROLLED", "BEFORE_SCHOOL", "AFTER_SCHOOL"}

func (t Track) String() string {
	if t < TrackEnrolled || t > TrackAfterSchool {
		return fmt.Sprintf("Track(%d)", int(t))
	}
	return trackNames[t]
}

func ParseTrack(s string) (Track, error) {
	name := CleanString(s)
	for i, n := range trackNames {
		if strings.EqualFold(n, name) {
			return Track(i), nil
		}
	}
	return 0, fmt.Errorf("invalid track %q", s)
}

func (t Track) Value() (driver.Value, error) { return t.String(), nil }

func (t *Track) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		tr, err := ParseTrack(v)
		if err != nil {
			return err
		}
		*t = tr
		return nil
	case []byte:
		return t.Scan(string(v))
	}
	return fmt.Errorf("cannot scan %T into Track", src)
}

func (t Track) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *Track) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	tr, err := ParseTrack(s)
	if err != nil {
		return err
	}
	*t = tr
	return nil
}
