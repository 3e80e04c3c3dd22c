package schedule

import (
	"time"

	"github.com/casitakids/backend/core"
)

// Planning identifies one class's schedule for one week of one
// month/year at one campus. At most one exists per
// (campus, class, year, month, week).
type Planning struct {
	ID        int       `json:"id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"` // 1-12
	Week      int       `json:"week"`  // 1-based, Monday-anchored
	StartDate time.Time `json:"start_date"` // Monday
	EndDate   time.Time `json:"end_date"`   // Friday
	CampusID  int       `json:"campus_id"`
	ClassID   int       `json:"class_id"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Period is the unique lookup tuple of a Planning.
type Period struct {
	CampusID int
	ClassID  int
	Year     int
	Month    int
	Week     int
}

func (p Planning) Period() Period {
	return Period{CampusID: p.CampusID, ClassID: p.ClassID, Year: p.Year, Month: p.Month, Week: p.Week}
}

// DailySchedule is one concrete school day's roster. Identity (planning,
// day, date) is fixed after creation; the teacher and student sets stay
// mutable for the schedule's whole life.
type DailySchedule struct {
	ID         int          `json:"id"`
	PlanningID int          `json:"planning_id"`
	Day        core.Weekday `json:"day"`
	Date       time.Time    `json:"date"`
	TeacherIDs []int        `json:"teacher_ids"`
	StudentIDs []int        `json:"student_ids"`
	AdminID    int          `json:"admin_id"`
	Notes      string       `json:"notes"`
}

func (ds DailySchedule) HasStudent(id int) bool { return containsID(ds.StudentIDs, id) }
func (ds DailySchedule) HasTeacher(id int) bool { return containsID(ds.TeacherIDs, id) }

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// ClassSchedule is a daily schedule joined with its planning's class,
// as the synchronizer consumes it.
type ClassSchedule struct {
	DailySchedule
	ClassID int `json:"class_id"`
}

type NewPlanning struct {
	Year     int    `json:"year" validate:"required,min=2000,max=2100"`
	Month    int    `json:"month" validate:"required,min=1,max=12"`
	Week     int    `json:"week" validate:"omitempty,min=1,max=6"`
	CampusID int    `json:"campus_id" validate:"required"`
	ClassID  int    `json:"class_id" validate:"required"`
	Notes    string `json:"notes"`
}

type PlanningFilter struct {
	CampusID int  `query:"campus_id"`
	ClassID  int  `query:"class_id"`
	Year     int  `query:"year"`
	Month    int  `query:"month"`
	Week     *int `query:"week"`
}

// WeeksResult reports the per-week outcome of a bulk six-week creation.
type WeeksResult struct {
	Created []Planning    `json:"created"`
	Failed  []WeekFailure `json:"failed"`
}

type WeekFailure struct {
	Week  int    `json:"week"`
	Error string `json:"error"`
}

// DayFailure is one school day a generation run could not materialize.
type DayFailure struct {
	Day   core.Weekday `json:"day"`
	Error string       `json:"error"`
}

type UpdateSchedule struct {
	TeacherIDs []int   `json:"teacher_ids"`
	StudentIDs []int   `json:"student_ids"`
	Notes      *string `json:"notes"`
}
