package student

import (
	"time"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/class"
)

// Student carries the enrollment facts the scheduling core works with:
// one day-set per track, the class memberships, the active date window
// and the optional transition window describing the next active state.
type Student struct {
	ID          int       `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	Notes       string    `json:"notes"`
	CampusID    *int      `json:"campus_id"`

	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`

	DaysEnrolled     core.WeekdaySet `json:"days_enrolled"`
	BeforeSchoolDays core.WeekdaySet `json:"before_school_days"`
	AfterSchoolDays  core.WeekdaySet `json:"after_school_days"`
	ClassIDs         []int           `json:"class_ids"`

	// Transition window: what becomes active once TransitionStartDate
	// arrives. All transition fields are cleared by the sweep.
	TransitionStartDate        *time.Time      `json:"transition_start_date"`
	TransitionDaysEnrolled     core.WeekdaySet `json:"transition_days_enrolled"`
	TransitionBeforeSchoolDays core.WeekdaySet `json:"transition_before_school_days"`
	TransitionAfterSchoolDays  core.WeekdaySet `json:"transition_after_school_days"`
	TransitionClassIDs         []int           `json:"transition_class_ids"`

	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (s Student) FullName() string { return s.FirstName + " " + s.LastName }

// Days returns the active day-set for the given track.
func (s Student) Days(track core.Track) core.WeekdaySet {
	switch track {
	case core.TrackBeforeSchool:
		return s.BeforeSchoolDays
	case core.TrackAfterSchool:
		return s.AfterSchoolDays
	default:
		return s.DaysEnrolled
	}
}

// TransitionDays returns the transition day-set for the given track.
func (s Student) TransitionDays(track core.Track) core.WeekdaySet {
	switch track {
	case core.TrackBeforeSchool:
		return s.TransitionBeforeSchoolDays
	case core.TrackAfterSchool:
		return s.TransitionAfterSchoolDays
	default:
		return s.TransitionDaysEnrolled
	}
}

func (s Student) HasClass(id int) bool           { return containsID(s.ClassIDs, id) }
func (s Student) HasTransitionClass(id int) bool { return containsID(s.TransitionClassIDs, id) }

// Program derives the student's age group: over 24 months is toddler,
// otherwise primary.
func (s Student) Program(today time.Time) class.Program {
	if s.DateOfBirth.IsZero() {
		return class.ProgramPrimary
	}
	months := (today.Year()-s.DateOfBirth.Year())*12 + int(today.Month()) - int(s.DateOfBirth.Month())
	if months > 24 {
		return class.ProgramToddler
	}
	return class.ProgramPrimary
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type NewStudent struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	DateOfBirth string `json:"date_of_birth" validate:"required"`
	Gender      string `json:"gender" validate:"omitempty,oneof=M F Other"`
	Notes       string `json:"notes"`
	CampusID    *int   `json:"campus_id"`

	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`

	DaysEnrolled     []string `json:"days_enrolled" validate:"required,min=1,dive,weekday"`
	BeforeSchoolDays []string `json:"before_school_days" validate:"omitempty,dive,weekday"`
	AfterSchoolDays  []string `json:"after_school_days" validate:"omitempty,dive,weekday"`
	ClassIDs         []int    `json:"class_ids" validate:"required,min=1"`
}

type UpdateStudent struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Gender    string  `json:"gender" validate:"omitempty,oneof=M F Other"`
	Notes     *string `json:"notes"`
	CampusID  *int    `json:"campus_id"`

	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`

	DaysEnrolled     []string `json:"days_enrolled" validate:"omitempty,dive,weekday"`
	BeforeSchoolDays []string `json:"before_school_days" validate:"omitempty,dive,weekday"`
	AfterSchoolDays  []string `json:"after_school_days" validate:"omitempty,dive,weekday"`
	ClassIDs         []int    `json:"class_ids"`

	TransitionStartDate        *string  `json:"transition_start_date"`
	TransitionDaysEnrolled     []string `json:"transition_days_enrolled" validate:"omitempty,dive,weekday"`
	TransitionBeforeSchoolDays []string `json:"transition_before_school_days" validate:"omitempty,dive,weekday"`
	TransitionAfterSchoolDays  []string `json:"transition_after_school_days" validate:"omitempty,dive,weekday"`
	TransitionClassIDs         []int    `json:"transition_class_ids"`
}
