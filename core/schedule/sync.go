package schedule

import (
	"context"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/class"
	"github.com/casitakids/backend/core/student"
	"github.com/casitakids/backend/core/teacher"
)

type (
	// ClassDirectory is the slice of the class repository the
	// synchronizer needs; satisfied by class.Repository.
	ClassDirectory interface {
		GetClassesByID(ctx context.Context, ids ...int) ([]class.Class, error)
	}

	// Synchronizer reconciles already generated future schedules with
	// a member's current enrollment facts. Past schedules are never
	// touched. Per-schedule failures are collected, not propagated, so
	// one bad row cannot block the rest of the reconciliation.
	Synchronizer struct {
		repo    Repository
		classes ClassDirectory
		clock   core.Clock
		log     core.Logger
	}
)

var (
	_ student.Synchronizer = (*Synchronizer)(nil)
	_ teacher.Synchronizer = (*Synchronizer)(nil)
)

func NewSynchronizer(repo Repository, classes ClassDirectory, clock core.Clock, log core.Logger) *Synchronizer {
	return &Synchronizer{repo: repo, classes: classes, clock: clock, log: log}
}

// SyncStudent re-evaluates the student's presence on every future
// schedule of their current and transition classes, and unconditionally
// drops them from future schedules of removedClassIDs. The same
// predicate the generator applies decides presence, so a synced
// schedule matches what full regeneration would produce.
func (s *Synchronizer) SyncStudent(ctx context.Context, st student.Student, removedClassIDs []int) (core.BatchResult, error) {
	var res core.BatchResult
	from := s.clock.Today()

	classIDs := unionIDs(st.ClassIDs, st.TransitionClassIDs)
	if len(classIDs) > 0 {
		classes, err := s.classes.GetClassesByID(ctx, classIDs...)
		if err != nil {
			return res, err
		}
		byID := make(map[int]class.Class, len(classes))
		for _, cl := range classes {
			byID[cl.ID] = cl
		}

		schedules, err := s.repo.QueryFutureSchedules(ctx, classIDs, from)
		if err != nil {
			return res, err
		}
		for _, cs := range schedules {
			cl, ok := byID[cs.ClassID]
			if !ok {
				continue
			}
			want := st.ActiveOn(cl.Track, cl.ID, cs.Date)
			if err := s.reconcileStudent(ctx, cs, st.ID, want); err != nil {
				res.Fail(cs.ID, err)
				continue
			}
			res.Ok(cs.ID)
		}
	}

	for _, classID := range removedClassIDs {
		schedules, err := s.repo.QueryFutureSchedulesWithStudent(ctx, classID, st.ID, from)
		if err != nil {
			return res, err
		}
		for _, cs := range schedules {
			if err := s.repo.RemoveStudentFromSchedule(ctx, cs.ID, st.ID); err != nil {
				res.Fail(cs.ID, err)
				continue
			}
			res.Ok(cs.ID)
		}
	}
	return res, nil
}

func (s *Synchronizer) reconcileStudent(ctx context.Context, cs ClassSchedule, studentID int, want bool) error {
	switch {
	case want && !cs.HasStudent(studentID):
		return s.repo.AddStudentToSchedule(ctx, cs.ID, studentID)
	case !want && cs.HasStudent(studentID):
		return s.repo.RemoveStudentFromSchedule(ctx, cs.ID, studentID)
	}
	return nil
}

// SyncTeacher puts the teacher on every future schedule of their
// current classes and drops them from future schedules of
// removedClassIDs. Teacher membership has no date window: assignment
// to the class is the whole predicate.
func (s *Synchronizer) SyncTeacher(ctx context.Context, t teacher.Teacher, removedClassIDs []int) (core.BatchResult, error) {
	var res core.BatchResult
	from := s.clock.Today()

	if len(t.ClassIDs) > 0 {
		schedules, err := s.repo.QueryFutureSchedules(ctx, t.ClassIDs, from)
		if err != nil {
			return res, err
		}
		for _, cs := range schedules {
			if cs.HasTeacher(t.ID) {
				res.Ok(cs.ID)
				continue
			}
			if err := s.repo.AddTeacherToSchedule(ctx, cs.ID, t.ID); err != nil {
				res.Fail(cs.ID, err)
				continue
			}
			res.Ok(cs.ID)
		}
	}

	for _, classID := range removedClassIDs {
		schedules, err := s.repo.QueryFutureSchedulesWithTeacher(ctx, classID, t.ID, from)
		if err != nil {
			return res, err
		}
		for _, cs := range schedules {
			if err := s.repo.RemoveTeacherFromSchedule(ctx, cs.ID, t.ID); err != nil {
				res.Fail(cs.ID, err)
				continue
			}
			res.Ok(cs.ID)
		}
	}
	return res, nil
}

func unionIDs(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	for _, id := range b {
		if !containsID(a, id) {
			out = append(out, id)
		}
	}
	return out
}
