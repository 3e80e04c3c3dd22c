package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/schedule"
)

type scheduleRepository struct {
	plannings *planningTable
	schedules *scheduleTable
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) *scheduleRepository {
	return &scheduleRepository{plannings: db.planning, schedules: db.schedule}
}

func (repo *scheduleRepository) queryPlannings() []schedule.Planning {
	plannings := make([]schedule.Planning, 0, len(repo.plannings.table))
	for _, p := range repo.plannings.table {
		plannings = append(plannings, *p)
	}
	sort.Slice(plannings, func(i, j int) bool { return plannings[i].ID < plannings[j].ID })
	return plannings
}

func (repo *scheduleRepository) querySchedules() []schedule.DailySchedule {
	schedules := make([]schedule.DailySchedule, 0, len(repo.schedules.table))
	for _, ds := range repo.schedules.table {
		schedules = append(schedules, *ds)
	}
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].ID < schedules[j].ID })
	return schedules
}

func (repo *scheduleRepository) CreatePlanning(_ context.Context, p schedule.Planning) (schedule.Planning, error) {
	repo.plannings.Lock()
	defer repo.plannings.Unlock()

	for _, existing := range repo.plannings.table {
		if existing.Period() == p.Period() {
			return schedule.Planning{}, schedule.ErrPlanningExists
		}
	}
	repo.plannings.seq++
	p.ID = repo.plannings.seq
	repo.plannings.table[p.ID] = &p
	return p, nil
}

func (repo *scheduleRepository) FindPlanningByPeriod(_ context.Context, period schedule.Period) (schedule.Planning, error) {
	repo.plannings.RLock()
	defer repo.plannings.RUnlock()

	for _, p := range repo.queryPlannings() {
		if p.Period() == period {
			return p, nil
		}
	}
	return schedule.Planning{}, schedule.ErrPlanningNotFound
}

func (repo *scheduleRepository) GetPlanningByID(_ context.Context, id int) (schedule.Planning, error) {
	repo.plannings.RLock()
	defer repo.plannings.RUnlock()

	if p, ok := repo.plannings.table[id]; ok {
		return *p, nil
	}
	return schedule.Planning{}, schedule.ErrPlanningNotFound
}

func (repo *scheduleRepository) QueryPlannings(_ context.Context, f schedule.PlanningFilter) ([]schedule.Planning, error) {
	repo.plannings.RLock()
	defer repo.plannings.RUnlock()

	var plannings []schedule.Planning
	for _, p := range repo.queryPlannings() {
		if f.CampusID != 0 && p.CampusID != f.CampusID {
			continue
		}
		if f.ClassID != 0 && p.ClassID != f.ClassID {
			continue
		}
		if f.Year != 0 && p.Year != f.Year {
			continue
		}
		if f.Month != 0 && p.Month != f.Month {
			continue
		}
		if f.Week != nil && p.Week != *f.Week {
			continue
		}
		plannings = append(plannings, p)
	}
	return plannings, nil
}

func (repo *scheduleRepository) UpdatePlanningNotes(_ context.Context, id int, notes string) error {
	repo.plannings.Lock()
	defer repo.plannings.Unlock()

	p, ok := repo.plannings.table[id]
	if !ok {
		return schedule.ErrPlanningNotFound
	}
	p.Notes = notes
	return nil
}

func (repo *scheduleRepository) DeletePlanning(_ context.Context, id int) error {
	repo.plannings.Lock()
	defer repo.plannings.Unlock()
	repo.schedules.Lock()
	defer repo.schedules.Unlock()

	delete(repo.plannings.table, id)
	for sid, ds := range repo.schedules.table {
		if ds.PlanningID == id {
			delete(repo.schedules.table, sid)
		}
	}
	return nil
}

func (repo *scheduleRepository) CreateSchedule(_ context.Context, ds schedule.DailySchedule) (schedule.DailySchedule, error) {
	repo.schedules.Lock()
	defer repo.schedules.Unlock()

	for _, existing := range repo.schedules.table {
		if existing.PlanningID == ds.PlanningID && existing.Day == ds.Day {
			return schedule.DailySchedule{}, schedule.ErrScheduleExists
		}
	}
	repo.schedules.seq++
	ds.ID = repo.schedules.seq
	repo.schedules.table[ds.ID] = &ds
	return ds, nil
}

func (repo *scheduleRepository) GetScheduleByID(_ context.Context, id int) (schedule.DailySchedule, error) {
	repo.schedules.RLock()
	defer repo.schedules.RUnlock()

	if ds, ok := repo.schedules.table[id]; ok {
		return *ds, nil
	}
	return schedule.DailySchedule{}, schedule.ErrScheduleNotFound
}

func (repo *scheduleRepository) QuerySchedulesByPlanning(_ context.Context, planningID int) ([]schedule.DailySchedule, error) {
	repo.schedules.RLock()
	defer repo.schedules.RUnlock()

	var schedules []schedule.DailySchedule
	for _, ds := range repo.querySchedules() {
		if ds.PlanningID == planningID {
			schedules = append(schedules, ds)
		}
	}
	return schedules, nil
}

func (repo *scheduleRepository) QueryAllSchedules(_ context.Context, day *core.Weekday) ([]schedule.DailySchedule, error) {
	repo.schedules.RLock()
	defer repo.schedules.RUnlock()

	var schedules []schedule.DailySchedule
	for _, ds := range repo.querySchedules() {
		if day != nil && ds.Day != *day {
			continue
		}
		schedules = append(schedules, ds)
	}
	return schedules, nil
}

func (repo *scheduleRepository) UpdateScheduleNotes(_ context.Context, id int, notes string) error {
	repo.schedules.Lock()
	defer repo.schedules.Unlock()

	ds, ok := repo.schedules.table[id]
	if !ok {
		return schedule.ErrScheduleNotFound
	}
	ds.Notes = notes
	return nil
}

func (repo *scheduleRepository) DeleteSchedule(_ context.Context, id int) error {
	repo.schedules.Lock()
	defer repo.schedules.Unlock()
	delete(repo.schedules.table, id)
	return nil
}

func (repo *scheduleRepository) classOf(planningID int) (int, bool) {
	repo.plannings.RLock()
	defer repo.plannings.RUnlock()

	if p, ok := repo.plannings.table[planningID]; ok {
		return p.ClassID, true
	}
	return 0, false
}

func (repo *scheduleRepository) queryFuture(from time.Time, match func(classID int, ds schedule.DailySchedule) bool) []schedule.ClassSchedule {
	repo.schedules.RLock()
	schedules := repo.querySchedules()
	repo.schedules.RUnlock()

	var out []schedule.ClassSchedule
	for _, ds := range schedules {
		if ds.Date.Before(from) {
			continue
		}
		classID, ok := repo.classOf(ds.PlanningID)
		if !ok || !match(classID, ds) {
			continue
		}
		out = append(out, schedule.ClassSchedule{DailySchedule: ds, ClassID: classID})
	}
	return out
}

func (repo *scheduleRepository) QueryFutureSchedules(_ context.Context, classIDs []int, from time.Time) ([]schedule.ClassSchedule, error) {
	return repo.queryFuture(from, func(classID int, _ schedule.DailySchedule) bool {
		for _, id := range classIDs {
			if id == classID {
				return true
			}
		}
		return false
	}), nil
}

func (repo *scheduleRepository) QueryFutureSchedulesWithStudent(_ context.Context, classID, studentID int, from time.Time) ([]schedule.ClassSchedule, error) {
	return repo.queryFuture(from, func(cid int, ds schedule.DailySchedule) bool {
		return cid == classID && ds.HasStudent(studentID)
	}), nil
}

func (repo *scheduleRepository) QueryFutureSchedulesWithTeacher(_ context.Context, classID, teacherID int, from time.Time) ([]schedule.ClassSchedule, error) {
	return repo.queryFuture(from, func(cid int, ds schedule.DailySchedule) bool {
		return cid == classID && ds.HasTeacher(teacherID)
	}), nil
}

func (repo *scheduleRepository) AddStudentToSchedule(_ context.Context, scheduleID, studentID int) error {
	repo.schedules.Lock()
	defer repo.schedules.Unlock()

	ds, ok := repo.schedules.table[scheduleID]
	if !ok {
		return schedule.ErrScheduleNotFound
	}
	if !ds.HasStudent(studentID) {
		ds.StudentIDs = append(ds.StudentIDs, studentID)
	}
	return nil
}

func (repo *scheduleRepository) RemoveStudentFromSchedule(_ context.Context, scheduleID, studentID int) error {
	repo.schedules.Lock()
	defer repo.schedules.Unlock()

	ds, ok := repo.schedules.table[scheduleID]
	if !ok {
		return schedule.ErrScheduleNotFound
	}
	ds.StudentIDs = removeID(ds.StudentIDs, studentID)
	return nil
}

func (repo *scheduleRepository) AddTeacherToSchedule(_ context.Context, scheduleID, teacherID int) error {
	repo.schedules.Lock()
	defer repo.schedules.Unlock()

	ds, ok := repo.schedules.table[scheduleID]
	if !ok {
		return schedule.ErrScheduleNotFound
	}
	if !ds.HasTeacher(teacherID) {
		ds.TeacherIDs = append(ds.TeacherIDs, teacherID)
	}
	return nil
}

func (repo *scheduleRepository) RemoveTeacherFromSchedule(_ context.Context, scheduleID, teacherID int) error {
	repo.schedules.Lock()
	defer repo.schedules.Unlock()

	ds, ok := repo.schedules.table[scheduleID]
	if !ok {
		return schedule.ErrScheduleNotFound
	}
	ds.TeacherIDs = removeID(ds.TeacherIDs, teacherID)
	return nil
}

func removeID(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
