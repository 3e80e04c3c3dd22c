package schedule_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/schedule"
	"github.com/casitakids/backend/core/student"
	"github.com/casitakids/backend/core/teacher"
	logsvc "github.com/casitakids/backend/services/logger"
)

func (f *fixture) newSynchronizer(today time.Time) *schedule.Synchronizer {
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	return schedule.NewSynchronizer(f.scheduleRepo, f.classRepo, core.FixedClock{T: today}, logger)
}

func (f *fixture) schedulesByDay(t *testing.T, planningID int) map[core.Weekday]schedule.DailySchedule {
	t.Helper()
	schedules, err := f.scheduleRepo.QuerySchedulesByPlanning(context.Background(), planningID)
	if err != nil {
		t.Fatalf("QuerySchedulesByPlanning() failed, %v", err)
	}
	byDay := make(map[core.Weekday]schedule.DailySchedule, len(schedules))
	for _, ds := range schedules {
		byDay[ds.Day] = ds
	}
	return byDay
}

func Test_Synchronizer_SyncStudent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cp := f.createCampus(t)
	cl := f.createClass(t, cp.ID, core.TrackEnrolled)

	st, err := f.studentRepo.CreateStudent(ctx, student.Student{
		FirstName: "Maya", LastName: "Reed",
		StartDate:    datePtr(2024, time.March, 4),
		DaysEnrolled: core.NewWeekdaySet(core.Monday, core.Wednesday, core.Friday),
		ClassIDs:     []int{cl.ID},
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed, %v", err)
	}

	p, err := f.svc.GetOrCreatePlanning(ctx, schedule.NewPlanning{
		Year: 2024, Month: 3, Week: 2, CampusID: cp.ID, ClassID: cl.ID,
	})
	if err != nil {
		t.Fatalf("GetOrCreatePlanning() error = %v", err)
	}
	if _, err = f.svc.Generate(ctx, p.ID, 1); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// end date set to Wednesday: Friday is now past the window,
	// Monday and Wednesday stay (inclusive bound)
	st.EndDate = datePtr(2024, time.March, 6)
	if st, err = f.studentRepo.UpdateStudent(ctx, st); err != nil {
		t.Fatalf("UpdateStudent() failed, %v", err)
	}

	syncer := f.newSynchronizer(date(2024, time.March, 1))
	res, err := syncer.SyncStudent(ctx, st, nil)
	if err != nil {
		t.Fatalf("SyncStudent() error = %v", err)
	}
	if len(res.Failed) != 0 {
		t.Fatalf("SyncStudent() failed = %+v, want none", res.Failed)
	}

	byDay := f.schedulesByDay(t, p.ID)
	if !byDay[core.Monday].HasStudent(st.ID) {
		t.Error("Monday roster lost the student")
	}
	if !byDay[core.Wednesday].HasStudent(st.ID) {
		t.Error("Wednesday (end date, inclusive) roster lost the student")
	}
	if byDay[core.Friday].HasStudent(st.ID) {
		t.Error("Friday roster still includes the student past their end date")
	}

	// a second pass converges without changes
	before := f.schedulesByDay(t, p.ID)
	if _, err = syncer.SyncStudent(ctx, st, nil); err != nil {
		t.Fatalf("SyncStudent() rerun error = %v", err)
	}
	after := f.schedulesByDay(t, p.ID)
	for day, ds := range before {
		if len(after[day].StudentIDs) != len(ds.StudentIDs) {
			t.Errorf("%s roster changed on a converged rerun", day)
		}
	}
}

func Test_Synchronizer_SyncStudent_pastUntouched(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cp := f.createCampus(t)
	cl := f.createClass(t, cp.ID, core.TrackEnrolled)

	st, err := f.studentRepo.CreateStudent(ctx, student.Student{
		FirstName: "Maya", LastName: "Reed",
		DaysEnrolled: core.NewWeekdaySet(core.Monday, core.Tuesday, core.Wednesday, core.Thursday, core.Friday),
		ClassIDs:     []int{cl.ID},
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed, %v", err)
	}

	p, err := f.svc.GetOrCreatePlanning(ctx, schedule.NewPlanning{
		Year: 2024, Month: 3, Week: 2, CampusID: cp.ID, ClassID: cl.ID,
	})
	if err != nil {
		t.Fatalf("GetOrCreatePlanning() error = %v", err)
	}
	if _, err = f.svc.Generate(ctx, p.ID, 1); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// midweek: Monday and Tuesday are history now
	st.DaysEnrolled = 0
	if st, err = f.studentRepo.UpdateStudent(ctx, st); err != nil {
		t.Fatalf("UpdateStudent() failed, %v", err)
	}
	syncer := f.newSynchronizer(date(2024, time.March, 6))
	if _, err = syncer.SyncStudent(ctx, st, nil); err != nil {
		t.Fatalf("SyncStudent() error = %v", err)
	}

	byDay := f.schedulesByDay(t, p.ID)
	for _, day := range []core.Weekday{core.Monday, core.Tuesday} {
		if !byDay[day].HasStudent(st.ID) {
			t.Errorf("%s (past) roster was modified", day)
		}
	}
	for _, day := range []core.Weekday{core.Wednesday, core.Thursday, core.Friday} {
		if byDay[day].HasStudent(st.ID) {
			t.Errorf("%s (future) roster still includes the student", day)
		}
	}
}

func Test_Synchronizer_SyncStudent_removedClass(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cp := f.createCampus(t)
	cl := f.createClass(t, cp.ID, core.TrackEnrolled)

	st, err := f.studentRepo.CreateStudent(ctx, student.Student{
		FirstName: "Maya", LastName: "Reed",
		DaysEnrolled: core.NewWeekdaySet(core.Monday, core.Wednesday),
		ClassIDs:     []int{cl.ID},
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed, %v", err)
	}

	p, err := f.svc.GetOrCreatePlanning(ctx, schedule.NewPlanning{
		Year: 2024, Month: 3, Week: 2, CampusID: cp.ID, ClassID: cl.ID,
	})
	if err != nil {
		t.Fatalf("GetOrCreatePlanning() error = %v", err)
	}
	if _, err = f.svc.Generate(ctx, p.ID, 1); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// dropped from the class entirely: removal is unconditional
	st.ClassIDs = nil
	if st, err = f.studentRepo.UpdateStudent(ctx, st); err != nil {
		t.Fatalf("UpdateStudent() failed, %v", err)
	}
	syncer := f.newSynchronizer(date(2024, time.March, 1))
	if _, err = syncer.SyncStudent(ctx, st, []int{cl.ID}); err != nil {
		t.Fatalf("SyncStudent() error = %v", err)
	}

	for day, ds := range f.schedulesByDay(t, p.ID) {
		if ds.HasStudent(st.ID) {
			t.Errorf("%s roster still includes the removed student", day)
		}
	}
}

func Test_Synchronizer_SyncTeacher(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	cp := f.createCampus(t)
	cl := f.createClass(t, cp.ID, core.TrackEnrolled)

	p, err := f.svc.GetOrCreatePlanning(ctx, schedule.NewPlanning{
		Year: 2024, Month: 3, Week: 2, CampusID: cp.ID, ClassID: cl.ID,
	})
	if err != nil {
		t.Fatalf("GetOrCreatePlanning() error = %v", err)
	}
	if _, err = f.svc.Generate(ctx, p.ID, 1); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// hired onto the class after generation
	tch, err := f.teacherRepo.CreateTeacher(ctx, teacher.Teacher{
		FirstName: "Ada", LastName: "King", Email: "ada@casita.test", ClassIDs: []int{cl.ID},
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed, %v", err)
	}

	syncer := f.newSynchronizer(date(2024, time.March, 1))
	if _, err = syncer.SyncTeacher(ctx, tch, nil); err != nil {
		t.Fatalf("SyncTeacher() error = %v", err)
	}
	for day, ds := range f.schedulesByDay(t, p.ID) {
		if !ds.HasTeacher(tch.ID) {
			t.Errorf("%s roster is missing the new teacher", day)
		}
	}

	// reassigned away again
	tch.ClassIDs = nil
	if _, err = syncer.SyncTeacher(ctx, tch, []int{cl.ID}); err != nil {
		t.Fatalf("SyncTeacher() error = %v", err)
	}
	for day, ds := range f.schedulesByDay(t, p.ID) {
		if ds.HasTeacher(tch.ID) {
			t.Errorf("%s roster still includes the removed teacher", day)
		}
	}
}
