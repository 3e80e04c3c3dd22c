package student_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/campus"
	"github.com/casitakids/backend/core/class"
	"github.com/casitakids/backend/core/schedule"
	"github.com/casitakids/backend/core/student"
	logsvc "github.com/casitakids/backend/services/logger"
	dummydb "github.com/casitakids/backend/storage/database/dummy"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, int, string, string) {}

type fixture struct {
	studentSvc  student.Service
	scheduleSvc schedule.Service

	campusRepo   campus.Repository
	classRepo    class.Repository
	studentRepo  student.Repository
	scheduleRepo schedule.Repository
}

// setup wires the student service against real schedule synchronization
// so sweep tests observe roster changes end to end.
func setup(t *testing.T, today time.Time) *fixture {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}

	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	clock := core.FixedClock{T: today}

	f := &fixture{
		campusRepo:   dummydb.NewCampusRepository(db),
		classRepo:    dummydb.NewClassRepository(db),
		studentRepo:  dummydb.NewStudentRepository(db),
		scheduleRepo: dummydb.NewScheduleRepository(db),
	}
	teacherRepo := dummydb.NewTeacherRepository(db)

	classSvc := class.NewService(f.classRepo)
	syncer := schedule.NewSynchronizer(f.scheduleRepo, f.classRepo, clock, logger)
	f.studentSvc = student.NewService(f.studentRepo, classSvc, syncer, clock, logger)
	f.scheduleSvc = schedule.NewService(
		f.scheduleRepo,
		campus.NewService(f.campusRepo, clock),
		classSvc,
		f.studentRepo,
		teacherRepo,
		noopNotifier{},
		clock,
		logger,
	)
	return f
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

func Test_service_RunTransitionSweep(t *testing.T) {
	// April 1, 2024 is a Monday and the first planning week of April.
	f := setup(t, date(2024, time.April, 1))
	ctx := context.Background()

	cp, err := f.campusRepo.CreateCampus(ctx, campus.Campus{Name: "Riverside"})
	if err != nil {
		t.Fatalf("CreateCampus() failed, %v", err)
	}
	oldClass, err := f.classRepo.CreateClass(ctx, class.Class{
		Name: "Maple Room", MaxCapacity: 12, Program: class.ProgramToddler,
		Track: core.TrackEnrolled, CampusID: cp.ID,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed, %v", err)
	}
	newClass, err := f.classRepo.CreateClass(ctx, class.Class{
		Name: "Cedar Room", MaxCapacity: 12, Program: class.ProgramToddler,
		Track: core.TrackEnrolled, CampusID: cp.ID,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed, %v", err)
	}

	st, err := f.studentRepo.CreateStudent(ctx, student.Student{
		FirstName: "Maya", LastName: "Reed",
		DaysEnrolled:           core.NewWeekdaySet(core.Monday, core.Wednesday, core.Friday),
		ClassIDs:               []int{oldClass.ID},
		TransitionStartDate:    datePtr(2024, time.April, 1),
		TransitionDaysEnrolled: core.NewWeekdaySet(core.Tuesday, core.Thursday),
		TransitionClassIDs:     []int{newClass.ID},
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed, %v", err)
	}

	// materialize the week for both classes before the sweep runs
	plannings := make(map[int]schedule.Planning, 2)
	for _, cl := range []class.Class{oldClass, newClass} {
		p, err := f.scheduleSvc.GetOrCreatePlanning(ctx, schedule.NewPlanning{
			Year: 2024, Month: 4, Week: 1, CampusID: cp.ID, ClassID: cl.ID,
		})
		if err != nil {
			t.Fatalf("GetOrCreatePlanning() error = %v", err)
		}
		if _, err = f.scheduleSvc.Generate(ctx, p.ID, 1); err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		plannings[cl.ID] = p
	}

	res := f.studentSvc.RunTransitionSweep(ctx)
	if len(res.Failed) != 0 {
		t.Fatalf("RunTransitionSweep() failed = %+v, want none", res.Failed)
	}
	if len(res.Succeeded) != 1 || res.Succeeded[0] != st.ID {
		t.Fatalf("RunTransitionSweep() promoted = %v, want [%d]", res.Succeeded, st.ID)
	}

	// transition facts became the active ones and were cleared
	promoted, err := f.studentRepo.GetStudentByID(ctx, st.ID)
	if err != nil {
		t.Fatalf("GetStudentByID() failed, %v", err)
	}
	if want := core.NewWeekdaySet(core.Tuesday, core.Thursday); promoted.DaysEnrolled != want {
		t.Errorf("DaysEnrolled = %v, want %v", promoted.DaysEnrolled, want)
	}
	if len(promoted.ClassIDs) != 1 || promoted.ClassIDs[0] != newClass.ID {
		t.Errorf("ClassIDs = %v, want [%d]", promoted.ClassIDs, newClass.ID)
	}
	if promoted.TransitionStartDate != nil || promoted.TransitionDaysEnrolled != 0 || promoted.TransitionClassIDs != nil {
		t.Error("transition fields not cleared after promotion")
	}

	// rosters follow: off the old class, on the new class Tue/Thu
	for day, ds := range f.schedulesByDay(t, plannings[oldClass.ID].ID) {
		if ds.HasStudent(st.ID) {
			t.Errorf("old class %s roster still includes the student", day)
		}
	}
	newByDay := f.schedulesByDay(t, plannings[newClass.ID].ID)
	for _, day := range []core.Weekday{core.Tuesday, core.Thursday} {
		if !newByDay[day].HasStudent(st.ID) {
			t.Errorf("new class %s roster is missing the student", day)
		}
	}
	for _, day := range []core.Weekday{core.Monday, core.Wednesday, core.Friday} {
		if newByDay[day].HasStudent(st.ID) {
			t.Errorf("new class %s roster should not include the student", day)
		}
	}

	// rerun finds nothing due
	res = f.studentSvc.RunTransitionSweep(ctx)
	if len(res.Succeeded) != 0 || len(res.Failed) != 0 {
		t.Errorf("RunTransitionSweep() rerun = %+v, want empty", res)
	}
}

func Test_service_Update_syncsRemovedClasses(t *testing.T) {
	f := setup(t, date(2024, time.March, 1))
	ctx := context.Background()

	cp, err := f.campusRepo.CreateCampus(ctx, campus.Campus{Name: "Riverside"})
	if err != nil {
		t.Fatalf("CreateCampus() failed, %v", err)
	}
	cl, err := f.classRepo.CreateClass(ctx, class.Class{
		Name: "Maple Room", MaxCapacity: 12, Program: class.ProgramToddler,
		Track: core.TrackEnrolled, CampusID: cp.ID,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed, %v", err)
	}
	other, err := f.classRepo.CreateClass(ctx, class.Class{
		Name: "Cedar Room", MaxCapacity: 12, Program: class.ProgramToddler,
		Track: core.TrackEnrolled, CampusID: cp.ID,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed, %v", err)
	}

	st, err := f.studentSvc.Create(ctx, student.NewStudent{
		FirstName: "Maya", LastName: "Reed", DateOfBirth: "2021-01-15",
		DaysEnrolled: []string{"Monday", "Wednesday"},
		ClassIDs:     []int{cl.ID},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	p, err := f.scheduleSvc.GetOrCreatePlanning(ctx, schedule.NewPlanning{
		Year: 2024, Month: 3, Week: 2, CampusID: cp.ID, ClassID: cl.ID,
	})
	if err != nil {
		t.Fatalf("GetOrCreatePlanning() error = %v", err)
	}
	if _, err = f.scheduleSvc.Generate(ctx, p.ID, 1); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if byDay := f.schedulesByDay(t, p.ID); !byDay[core.Monday].HasStudent(st.ID) {
		t.Fatal("Monday roster is missing the student after generation")
	}

	// moving to another class drops the student from the old class's
	// future schedules
	if _, err = f.studentSvc.Update(ctx, st.ID, student.UpdateStudent{ClassIDs: []int{other.ID}}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	for day, ds := range f.schedulesByDay(t, p.ID) {
		if ds.HasStudent(st.ID) {
			t.Errorf("%s roster still includes the moved student", day)
		}
	}
}
