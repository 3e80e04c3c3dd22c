package student

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/class"
)

var ErrNotFound = errors.New("student not found")

const dateLayout = "2006-01-02"

type (
	Repository interface {
		CreateStudent(ctx context.Context, st Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		QueryStudentsByCampus(ctx context.Context, campusID int) ([]Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentsByID(ctx context.Context, ids ...int) ([]Student, error)
		UpdateStudent(ctx context.Context, st Student) (Student, error)
		DeleteStudent(ctx context.Context, id int) error
		// QueryStudentsByClass returns students whose active class set
		// contains classID; QueryStudentsByTransitionClass does the same
		// for the transition class set.
		QueryStudentsByClass(ctx context.Context, classID int) ([]Student, error)
		QueryStudentsByTransitionClass(ctx context.Context, classID int) ([]Student, error)
		// QueryStudentsDueTransition returns students whose transition
		// start date equals the given day and is still set.
		QueryStudentsDueTransition(ctx context.Context, day time.Time) ([]Student, error)
	}

	// Synchronizer patches future daily-schedule rosters after a
	// student's enrollment facts changed. Implemented by the schedule
	// package.
	Synchronizer interface {
		SyncStudent(ctx context.Context, st Student, removedClassIDs []int) (core.BatchResult, error)
	}

	Service interface {
		Create(ctx context.Context, ns NewStudent) (Student, error)
		QueryAll(ctx context.Context) ([]Student, error)
		QueryByCampus(ctx context.Context, campusID int) ([]Student, error)
		GetByID(ctx context.Context, id int) (Student, error)
		Update(ctx context.Context, id int, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, id int) error
		// RunTransitionSweep promotes every student whose transition
		// start date is today and re-synchronizes their future
		// schedules. Per-student failures are collected, never fatal.
		RunTransitionSweep(ctx context.Context) core.BatchResult
	}

	service struct {
		repo    Repository
		classes class.Service
		syncer  Synchronizer
		clock   core.Clock
		log     core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, classes class.Service, syncer Synchronizer, clock core.Clock, log core.Logger) Service {
	return &service{repo: repo, classes: classes, syncer: syncer, clock: clock, log: log}
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	dob, err := parseDate(ns.DateOfBirth)
	if err != nil {
		return Student{}, core.NewValidationError(err, core.FieldError{Field: "date_of_birth", Error: err.Error()})
	}
	startDate, err := parseDatePtr(ns.StartDate)
	if err != nil {
		return Student{}, core.NewValidationError(err, core.FieldError{Field: "start_date", Error: err.Error()})
	}
	endDate, err := parseDatePtr(ns.EndDate)
	if err != nil {
		return Student{}, core.NewValidationError(err, core.FieldError{Field: "end_date", Error: err.Error()})
	}

	if _, err = svc.classes.GetByIDs(ctx, ns.ClassIDs...); err != nil {
		return Student{}, err
	}

	now := svc.clock.Now()
	st := Student{
		FirstName:        core.CleanString(ns.FirstName),
		LastName:         core.CleanString(ns.LastName),
		DateOfBirth:      *dob,
		Gender:           ns.Gender,
		Notes:            ns.Notes,
		CampusID:         ns.CampusID,
		StartDate:        startDate,
		EndDate:          endDate,
		DaysEnrolled:     mustDaySet(ns.DaysEnrolled),
		BeforeSchoolDays: mustDaySet(ns.BeforeSchoolDays),
		AfterSchoolDays:  mustDaySet(ns.AfterSchoolDays),
		ClassIDs:         ns.ClassIDs,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	st, err = svc.repo.CreateStudent(ctx, st)
	if err != nil {
		return Student{}, err
	}

	// pull the new student into any already-materialized future schedules
	if res, err := svc.syncer.SyncStudent(ctx, st, nil); err != nil {
		svc.log.Error(fmt.Sprintf("syncing schedules for new student %d: %v", st.ID, err), err)
	} else if len(res.Failed) > 0 {
		svc.logSyncFailures(st.ID, res)
	}
	return st, nil
}

func (svc *service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *service) QueryByCampus(ctx context.Context, campusID int) ([]Student, error) {
	return svc.repo.QueryStudentsByCampus(ctx, campusID)
}

func (svc *service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	st, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}

	if us.FirstName != "" {
		st.FirstName = core.CleanString(us.FirstName)
	}
	if us.LastName != "" {
		st.LastName = core.CleanString(us.LastName)
	}
	if us.Gender != "" {
		st.Gender = us.Gender
	}
	if us.Notes != nil {
		st.Notes = *us.Notes
	}
	if us.CampusID != nil {
		st.CampusID = us.CampusID
	}

	if us.StartDate != nil {
		start, err := parseDatePtr(us.StartDate)
		if err != nil {
			return Student{}, core.NewValidationError(err, core.FieldError{Field: "start_date", Error: err.Error()})
		}
		st.StartDate = start
	}
	if us.EndDate != nil {
		end, err := parseDatePtr(us.EndDate)
		if err != nil {
			return Student{}, core.NewValidationError(err, core.FieldError{Field: "end_date", Error: err.Error()})
		}
		st.EndDate = end
	}

	if us.DaysEnrolled != nil {
		st.DaysEnrolled = mustDaySet(us.DaysEnrolled)
	}
	if us.BeforeSchoolDays != nil {
		st.BeforeSchoolDays = mustDaySet(us.BeforeSchoolDays)
	}
	if us.AfterSchoolDays != nil {
		st.AfterSchoolDays = mustDaySet(us.AfterSchoolDays)
	}

	var removedClassIDs []int
	if us.ClassIDs != nil {
		if _, err = svc.classes.GetByIDs(ctx, us.ClassIDs...); err != nil {
			return Student{}, err
		}
		for _, old := range st.ClassIDs {
			if !containsID(us.ClassIDs, old) {
				removedClassIDs = append(removedClassIDs, old)
			}
		}
		st.ClassIDs = us.ClassIDs
	}

	if us.TransitionStartDate != nil {
		tstart, err := parseDatePtr(us.TransitionStartDate)
		if err != nil {
			return Student{}, core.NewValidationError(err, core.FieldError{Field: "transition_start_date", Error: err.Error()})
		}
		st.TransitionStartDate = tstart
	}
	if us.TransitionDaysEnrolled != nil {
		st.TransitionDaysEnrolled = mustDaySet(us.TransitionDaysEnrolled)
	}
	if us.TransitionBeforeSchoolDays != nil {
		st.TransitionBeforeSchoolDays = mustDaySet(us.TransitionBeforeSchoolDays)
	}
	if us.TransitionAfterSchoolDays != nil {
		st.TransitionAfterSchoolDays = mustDaySet(us.TransitionAfterSchoolDays)
	}
	if us.TransitionClassIDs != nil {
		if _, err = svc.classes.GetByIDs(ctx, us.TransitionClassIDs...); err != nil {
			return Student{}, err
		}
		st.TransitionClassIDs = us.TransitionClassIDs
	}

	st.UpdatedAt = svc.clock.Now()
	st, err = svc.repo.UpdateStudent(ctx, st)
	if err != nil {
		return Student{}, err
	}

	if res, err := svc.syncer.SyncStudent(ctx, st, removedClassIDs); err != nil {
		svc.log.Error(fmt.Sprintf("syncing schedules for student %d: %v", st.ID, err), err)
	} else if len(res.Failed) > 0 {
		svc.logSyncFailures(st.ID, res)
	}
	return st, nil
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteStudent(ctx, id)
}

func (svc *service) RunTransitionSweep(ctx context.Context) core.BatchResult {
	var res core.BatchResult

	today := svc.clock.Today()
	due, err := svc.repo.QueryStudentsDueTransition(ctx, today)
	if err != nil {
		svc.log.Error(fmt.Sprintf("transition sweep: querying due students: %v", err), err)
		res.Fail(0, err)
		return res
	}
	if len(due) == 0 {
		return res
	}
	svc.log.Info(fmt.Sprintf("transition sweep: %d student(s) due today", len(due)))

	for _, st := range due {
		if err := svc.promote(ctx, st); err != nil {
			svc.log.Error(fmt.Sprintf("transition sweep: student %d: %v", st.ID, err), err)
			res.Fail(st.ID, err)
			continue
		}
		res.Ok(st.ID)
	}
	return res
}

// promote copies the transition facts over the active ones, clears the
// transition fields (terminal until set again) and re-synchronizes the
// student's future schedules.
func (svc *service) promote(ctx context.Context, st Student) error {
	removed := make([]int, 0, len(st.ClassIDs))
	for _, old := range st.ClassIDs {
		if !containsID(st.TransitionClassIDs, old) {
			removed = append(removed, old)
		}
	}

	st.StartDate = st.TransitionStartDate
	st.DaysEnrolled = st.TransitionDaysEnrolled
	st.BeforeSchoolDays = st.TransitionBeforeSchoolDays
	st.AfterSchoolDays = st.TransitionAfterSchoolDays
	st.ClassIDs = st.TransitionClassIDs

	st.TransitionStartDate = nil
	st.TransitionDaysEnrolled = 0
	st.TransitionBeforeSchoolDays = 0
	st.TransitionAfterSchoolDays = 0
	st.TransitionClassIDs = nil

	st.UpdatedAt = svc.clock.Now()
	st, err := svc.repo.UpdateStudent(ctx, st)
	if err != nil {
		return err
	}

	res, err := svc.syncer.SyncStudent(ctx, st, removed)
	if err != nil {
		return err
	}
	if len(res.Failed) > 0 {
		svc.logSyncFailures(st.ID, res)
	}
	return nil
}

func (svc *service) logSyncFailures(studentID int, res core.BatchResult) {
	for _, f := range res.Failed {
		svc.log.Error(fmt.Sprintf("student %d: schedule %d not synced: %v", studentID, f.Item, f.Err), f.Err)
	}
}

// mustDaySet builds a WeekdaySet from validated day names;
// unknown names were rejected by the `weekday` validation tag.
func mustDaySet(names []string) core.WeekdaySet {
	var set core.WeekdaySet
	for _, n := range names {
		if d, err := core.ParseWeekday(n); err == nil {
			set = set.Add(d)
		}
	}
	return set
}

func parseDate(s string) (*time.Time, error) {
	t, err := time.Parse(dateLayout, core.CleanString(s))
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	t = core.Midnight(t)
	return &t, nil
}

// parseDatePtr maps an empty string to nil, clearing the date.
func parseDatePtr(s *string) (*time.Time, error) {
	if s == nil || core.CleanString(*s) == "" {
		return nil, nil
	}
	return parseDate(*s)
}
