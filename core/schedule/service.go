package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/campus"
	"github.com/casitakids/backend/core/class"
	"github.com/casitakids/backend/core/student"
	"github.com/casitakids/backend/core/teacher"
)

var (
	// errors
	ErrPlanningNotFound = errors.New("planning not found")
	ErrPlanningExists   = errors.New("a planning already exists for this period")
	ErrScheduleNotFound = errors.New("daily schedule not found")
	ErrScheduleExists   = errors.New("daily schedules already exist for this planning")
	ErrProgramMismatch  = errors.New("student is not enrolled in the same program as the class")
)

// maxWeeksPerMonth bounds the bulk creation loop; months never have
// more than six Monday-anchored planning weeks.
const maxWeeksPerMonth = 6

type (
	Repository interface {
		CreatePlanning(ctx context.Context, p Planning) (Planning, error)
		FindPlanningByPeriod(ctx context.Context, period Period) (Planning, error)
		GetPlanningByID(ctx context.Context, id int) (Planning, error)
		QueryPlannings(ctx context.Context, f PlanningFilter) ([]Planning, error)
		UpdatePlanningNotes(ctx context.Context, id int, notes string) error
		// DeletePlanning cascades to the planning's daily schedules.
		DeletePlanning(ctx context.Context, id int) error

		CreateSchedule(ctx context.Context, ds DailySchedule) (DailySchedule, error)
		GetScheduleByID(ctx context.Context, id int) (DailySchedule, error)
		QuerySchedulesByPlanning(ctx context.Context, planningID int) ([]DailySchedule, error)
		QueryAllSchedules(ctx context.Context, day *core.Weekday) ([]DailySchedule, error)
		UpdateScheduleNotes(ctx context.Context, id int, notes string) error
		DeleteSchedule(ctx context.Context, id int) error

		// QueryFutureSchedules returns schedules dated on/after `from`
		// whose planning's class is in classIDs, rosters loaded.
		QueryFutureSchedules(ctx context.Context, classIDs []int, from time.Time) ([]ClassSchedule, error)
		// Same, restricted to schedules the given member is currently on.
		QueryFutureSchedulesWithStudent(ctx context.Context, classID, studentID int, from time.Time) ([]ClassSchedule, error)
		QueryFutureSchedulesWithTeacher(ctx context.Context, classID, teacherID int, from time.Time) ([]ClassSchedule, error)

		// Roster edge mutations. Each is a single atomic row
		// insert/delete and idempotent, so concurrent patches of one
		// schedule cannot lose each other's updates.
		AddStudentToSchedule(ctx context.Context, scheduleID, studentID int) error
		RemoveStudentFromSchedule(ctx context.Context, scheduleID, studentID int) error
		AddTeacherToSchedule(ctx context.Context, scheduleID, teacherID int) error
		RemoveTeacherFromSchedule(ctx context.Context, scheduleID, teacherID int) error
	}

	// StudentDirectory is the slice of the student repository the
	// generator needs; satisfied by student.Repository.
	StudentDirectory interface {
		QueryStudentsByClass(ctx context.Context, classID int) ([]student.Student, error)
		QueryStudentsByTransitionClass(ctx context.Context, classID int) ([]student.Student, error)
		GetStudentsByID(ctx context.Context, ids ...int) ([]student.Student, error)
	}

	// TeacherDirectory is the slice of the teacher repository the
	// generator needs; satisfied by teacher.Repository.
	TeacherDirectory interface {
		QueryTeachersByClass(ctx context.Context, classID int) ([]teacher.Teacher, error)
		GetTeachersByID(ctx context.Context, ids ...int) ([]teacher.Teacher, error)
	}

	// Notifier delivers advisory notifications; fire-and-forget, a
	// failed delivery never fails a scheduling operation.
	Notifier interface {
		Notify(ctx context.Context, userID int, title, message string)
	}

	Service interface {
		// GetOrCreatePlanning is idempotent per period tuple: an
		// existing planning is returned as-is.
		GetOrCreatePlanning(ctx context.Context, np NewPlanning) (Planning, error)
		// CreateWeeks attempts all six possible weeks of the month
		// independently; weeks past the month's end fail with
		// ErrWeekOutOfRange without aborting the others.
		CreateWeeks(ctx context.Context, np NewPlanning) WeeksResult
		QueryPlannings(ctx context.Context, f PlanningFilter) ([]Planning, error)
		GetPlanning(ctx context.Context, id int) (Planning, error)
		UpdatePlanningNotes(ctx context.Context, id int, notes string) error
		DeletePlanning(ctx context.Context, id int) error

		Generate(ctx context.Context, planningID, adminID int) (GenerateResult, error)
		GetSchedule(ctx context.Context, id int) (DailySchedule, error)
		QuerySchedules(ctx context.Context, planningID int) ([]DailySchedule, error)
		QueryAllSchedules(ctx context.Context, day *core.Weekday) ([]DailySchedule, error)
		UpdateSchedule(ctx context.Context, id int, us UpdateSchedule) (DailySchedule, error)
		DeleteSchedule(ctx context.Context, id int) error
	}

	service struct {
		repo     Repository
		campuses campus.Service
		classes  class.Service
		students StudentDirectory
		teachers TeacherDirectory
		notifier Notifier
		clock    core.Clock
		log      core.Logger
	}
)

// GenerateResult reports the per-weekday outcome of a generation run.
type GenerateResult struct {
	Created []DailySchedule `json:"created"`
	Failed  []DayFailure    `json:"failed"`
}

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	campuses campus.Service,
	classes class.Service,
	students StudentDirectory,
	teachers TeacherDirectory,
	notifier Notifier,
	clock core.Clock,
	log core.Logger,
) Service {
	return &service{
		repo:     repo,
		campuses: campuses,
		classes:  classes,
		students: students,
		teachers: teachers,
		notifier: notifier,
		clock:    clock,
		log:      log,
	}
}

func (svc *service) GetOrCreatePlanning(ctx context.Context, np NewPlanning) (Planning, error) {
	period := Period{CampusID: np.CampusID, ClassID: np.ClassID, Year: np.Year, Month: np.Month, Week: np.Week}
	if found, err := svc.repo.FindPlanningByPeriod(ctx, period); err == nil {
		return found, nil
	} else if !errors.Is(err, ErrPlanningNotFound) {
		return Planning{}, err
	}

	if _, err := svc.campuses.GetByID(ctx, np.CampusID); err != nil {
		return Planning{}, err
	}
	if _, err := svc.classes.GetByID(ctx, np.ClassID); err != nil {
		return Planning{}, err
	}

	start, end, err := WeekRange(np.Year, time.Month(np.Month), np.Week)
	if err != nil {
		return Planning{}, core.NewValidationError(err, core.FieldError{Field: "week", Error: err.Error()})
	}

	p := Planning{
		Year:      np.Year,
		Month:     np.Month,
		Week:      np.Week,
		StartDate: start,
		EndDate:   end,
		CampusID:  np.CampusID,
		ClassID:   np.ClassID,
		Notes:     np.Notes,
		CreatedAt: svc.clock.Now(),
	}
	created, err := svc.repo.CreatePlanning(ctx, p)
	if errors.Is(err, ErrPlanningExists) {
		// lost the race against a concurrent create for the same
		// period; the winner's row is the idempotent result
		return svc.repo.FindPlanningByPeriod(ctx, period)
	}
	return created, err
}

func (svc *service) CreateWeeks(ctx context.Context, np NewPlanning) WeeksResult {
	var res WeeksResult
	for week := 1; week <= maxWeeksPerMonth; week++ {
		wp := np
		wp.Week = week
		p, err := svc.GetOrCreatePlanning(ctx, wp)
		if err != nil {
			res.Failed = append(res.Failed, WeekFailure{Week: week, Error: err.Error()})
			continue
		}
		res.Created = append(res.Created, p)
	}
	return res
}

func (svc *service) QueryPlannings(ctx context.Context, f PlanningFilter) ([]Planning, error) {
	return svc.repo.QueryPlannings(ctx, f)
}

func (svc *service) GetPlanning(ctx context.Context, id int) (Planning, error) {
	return svc.repo.GetPlanningByID(ctx, id)
}

func (svc *service) UpdatePlanningNotes(ctx context.Context, id int, notes string) error {
	return svc.repo.UpdatePlanningNotes(ctx, id, notes)
}

func (svc *service) DeletePlanning(ctx context.Context, id int) error {
	return svc.repo.DeletePlanning(ctx, id)
}

// Generate materializes one daily schedule per school day of the
// planning's week, with the teachers of the planning's class and the
// students the evaluator reports ACTIVE on that date. Not re-entrant:
// regenerating requires deleting the existing schedules first.
func (svc *service) Generate(ctx context.Context, planningID, adminID int) (GenerateResult, error) {
	p, err := svc.repo.GetPlanningByID(ctx, planningID)
	if err != nil {
		return GenerateResult{}, err
	}
	cl, err := svc.classes.GetByID(ctx, p.ClassID)
	if err != nil {
		return GenerateResult{}, err
	}

	existing, err := svc.repo.QuerySchedulesByPlanning(ctx, planningID)
	if err != nil {
		return GenerateResult{}, err
	}
	if len(existing) > 0 {
		return GenerateResult{}, ErrScheduleExists
	}

	teachers, err := svc.teachers.QueryTeachersByClass(ctx, cl.ID)
	if err != nil {
		return GenerateResult{}, err
	}
	candidates, err := svc.rosterCandidates(ctx, cl.ID)
	if err != nil {
		return GenerateResult{}, err
	}

	teacherIDs := make([]int, 0, len(teachers))
	for _, t := range teachers {
		teacherIDs = append(teacherIDs, t.ID)
	}

	var res GenerateResult
	for _, day := range core.SchoolDays {
		date := DateForWeekday(p.StartDate, day)

		studentIDs := make([]int, 0, len(candidates))
		for _, st := range candidates {
			if st.ActiveOn(cl.Track, cl.ID, date) {
				studentIDs = append(studentIDs, st.ID)
			}
		}

		ds := DailySchedule{
			PlanningID: p.ID,
			Day:        day,
			Date:       date,
			TeacherIDs: teacherIDs,
			StudentIDs: studentIDs,
			AdminID:    adminID,
		}
		created, err := svc.repo.CreateSchedule(ctx, ds)
		if err != nil {
			svc.log.Error(fmt.Sprintf("generating %s schedule for planning %d: %v", day, p.ID, err), err)
			res.Failed = append(res.Failed, DayFailure{Day: day, Error: err.Error()})
			continue
		}
		res.Created = append(res.Created, created)

		for _, t := range teachers {
			svc.notifier.Notify(ctx, t.ID, "New Daily Schedule",
				fmt.Sprintf("You have a new daily schedule for %s in %s", day, cl.Name))
		}
	}
	return res, nil
}

// rosterCandidates returns every student attached to the class through
// either the active or the transition membership; the evaluator decides
// per date which window applies.
func (svc *service) rosterCandidates(ctx context.Context, classID int) ([]student.Student, error) {
	active, err := svc.students.QueryStudentsByClass(ctx, classID)
	if err != nil {
		return nil, err
	}
	transitioning, err := svc.students.QueryStudentsByTransitionClass(ctx, classID)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]bool, len(active))
	candidates := make([]student.Student, 0, len(active)+len(transitioning))
	for _, st := range active {
		seen[st.ID] = true
		candidates = append(candidates, st)
	}
	for _, st := range transitioning {
		if !seen[st.ID] {
			candidates = append(candidates, st)
		}
	}
	return candidates, nil
}

func (svc *service) GetSchedule(ctx context.Context, id int) (DailySchedule, error) {
	return svc.repo.GetScheduleByID(ctx, id)
}

func (svc *service) QuerySchedules(ctx context.Context, planningID int) ([]DailySchedule, error) {
	return svc.repo.QuerySchedulesByPlanning(ctx, planningID)
}

func (svc *service) QueryAllSchedules(ctx context.Context, day *core.Weekday) ([]DailySchedule, error) {
	return svc.repo.QueryAllSchedules(ctx, day)
}

// UpdateSchedule applies a manual roster/notes edit. Students joining
// the roster must be in the same program as the schedule's class.
func (svc *service) UpdateSchedule(ctx context.Context, id int, us UpdateSchedule) (DailySchedule, error) {
	ds, err := svc.repo.GetScheduleByID(ctx, id)
	if err != nil {
		return DailySchedule{}, err
	}

	if us.Notes != nil {
		if err = svc.repo.UpdateScheduleNotes(ctx, id, *us.Notes); err != nil {
			return DailySchedule{}, err
		}
	}

	if us.StudentIDs != nil {
		p, err := svc.repo.GetPlanningByID(ctx, ds.PlanningID)
		if err != nil {
			return DailySchedule{}, err
		}
		cl, err := svc.classes.GetByID(ctx, p.ClassID)
		if err != nil {
			return DailySchedule{}, err
		}
		joining, err := svc.students.GetStudentsByID(ctx, us.StudentIDs...)
		if err != nil {
			return DailySchedule{}, err
		}
		if len(joining) != len(us.StudentIDs) {
			return DailySchedule{}, student.ErrNotFound
		}
		today := svc.clock.Today()
		for _, st := range joining {
			if st.Program(today) != cl.Program {
				return DailySchedule{}, core.NewValidationError(ErrProgramMismatch, core.FieldError{
					Field: "student_ids",
					Error: fmt.Sprintf("student %s is not enrolled in the same program as the class", st.FullName()),
				})
			}
		}
		if err = svc.applyStudentSet(ctx, ds, us.StudentIDs); err != nil {
			return DailySchedule{}, err
		}
	}

	if us.TeacherIDs != nil {
		joining, err := svc.teachers.GetTeachersByID(ctx, us.TeacherIDs...)
		if err != nil {
			return DailySchedule{}, err
		}
		if len(joining) != len(us.TeacherIDs) {
			return DailySchedule{}, teacher.ErrNotFound
		}
		if err = svc.applyTeacherSet(ctx, ds, us.TeacherIDs); err != nil {
			return DailySchedule{}, err
		}
	}

	return svc.repo.GetScheduleByID(ctx, id)
}

func (svc *service) applyStudentSet(ctx context.Context, ds DailySchedule, want []int) error {
	for _, id := range want {
		if !ds.HasStudent(id) {
			if err := svc.repo.AddStudentToSchedule(ctx, ds.ID, id); err != nil {
				return err
			}
		}
	}
	for _, id := range ds.StudentIDs {
		if !containsID(want, id) {
			if err := svc.repo.RemoveStudentFromSchedule(ctx, ds.ID, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (svc *service) applyTeacherSet(ctx context.Context, ds DailySchedule, want []int) error {
	for _, id := range want {
		if !ds.HasTeacher(id) {
			if err := svc.repo.AddTeacherToSchedule(ctx, ds.ID, id); err != nil {
				return err
			}
		}
	}
	for _, id := range ds.TeacherIDs {
		if !containsID(want, id) {
			if err := svc.repo.RemoveTeacherFromSchedule(ctx, ds.ID, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func (svc *service) DeleteSchedule(ctx context.Context, id int) error {
	return svc.repo.DeleteSchedule(ctx, id)
}
