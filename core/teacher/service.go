package teacher

import (
	"context"
	"errors"
	"fmt"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/class"
)

var ErrNotFound = errors.New("teacher not found")

type (
	Repository interface {
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		QueryAllTeachers(ctx context.Context) ([]Teacher, error)
		QueryTeachersByCampus(ctx context.Context, campusID int) ([]Teacher, error)
		QueryTeachersByClass(ctx context.Context, classID int) ([]Teacher, error)
		GetTeacherByID(ctx context.Context, id int) (Teacher, error)
		GetTeachersByID(ctx context.Context, ids ...int) ([]Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		DeleteTeacher(ctx context.Context, id int) error
	}

	// Synchronizer patches future daily-schedule rosters after a
	// teacher's class set changed. Implemented by the schedule package.
	Synchronizer interface {
		SyncTeacher(ctx context.Context, t Teacher, removedClassIDs []int) (core.BatchResult, error)
	}

	Service interface {
		Create(ctx context.Context, nt NewTeacher) (Teacher, error)
		QueryAll(ctx context.Context) ([]Teacher, error)
		QueryByCampus(ctx context.Context, campusID int) ([]Teacher, error)
		GetByID(ctx context.Context, id int) (Teacher, error)
		Update(ctx context.Context, id int, ut UpdateTeacher) (Teacher, error)
		Delete(ctx context.Context, id int) error
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

func (svc *service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	if len(nt.ClassIDs) > 0 {
		if _, err := svc.classes.GetByIDs(ctx, nt.ClassIDs...); err != nil {
			return Teacher{}, err
		}
	}
	t := Teacher{
		FirstName: core.CleanString(nt.FirstName),
		LastName:  core.CleanString(nt.LastName),
		Email:     core.CleanString(nt.Email, true),
		Phone:     core.CleanString(nt.Phone),
		CampusID:  nt.CampusID,
		ClassIDs:  nt.ClassIDs,
		CreatedAt: svc.clock.Now(),
	}
	t, err := svc.repo.CreateTeacher(ctx, t)
	if err != nil {
		return Teacher{}, err
	}

	if res, err := svc.syncer.SyncTeacher(ctx, t, nil); err != nil {
		svc.log.Error(fmt.Sprintf("syncing schedules for new teacher %d: %v", t.ID, err), err)
	} else if len(res.Failed) > 0 {
		svc.logSyncFailures(t.ID, res)
	}
	return t, nil
}

func (svc *service) QueryAll(ctx context.Context) ([]Teacher, error) {
	return svc.repo.QueryAllTeachers(ctx)
}

func (svc *service) QueryByCampus(ctx context.Context, campusID int) ([]Teacher, error) {
	return svc.repo.QueryTeachersByCampus(ctx, campusID)
}

func (svc *service) GetByID(ctx context.Context, id int) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, ut UpdateTeacher) (Teacher, error) {
	t, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}

	if ut.FirstName != "" {
		t.FirstName = core.CleanString(ut.FirstName)
	}
	if ut.LastName != "" {
		t.LastName = core.CleanString(ut.LastName)
	}
	if ut.Email != "" {
		t.Email = core.CleanString(ut.Email, true)
	}
	if ut.Phone != "" {
		t.Phone = core.CleanString(ut.Phone)
	}
	if ut.CampusID != nil {
		t.CampusID = ut.CampusID
	}

	var removedClassIDs []int
	if ut.ClassIDs != nil {
		if _, err = svc.classes.GetByIDs(ctx, ut.ClassIDs...); err != nil {
			return Teacher{}, err
		}
		for _, old := range t.ClassIDs {
			if !containsID(ut.ClassIDs, old) {
				removedClassIDs = append(removedClassIDs, old)
			}
		}
		t.ClassIDs = ut.ClassIDs
	}

	t, err = svc.repo.UpdateTeacher(ctx, t)
	if err != nil {
		return Teacher{}, err
	}

	if ut.ClassIDs != nil {
		if res, err := svc.syncer.SyncTeacher(ctx, t, removedClassIDs); err != nil {
			svc.log.Error(fmt.Sprintf("syncing schedules for teacher %d: %v", t.ID, err), err)
		} else if len(res.Failed) > 0 {
			svc.logSyncFailures(t.ID, res)
		}
	}
	return t, nil
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteTeacher(ctx, id)
}

func (svc *service) logSyncFailures(teacherID int, res core.BatchResult) {
	for _, f := range res.Failed {
		svc.log.Error(fmt.Sprintf("teacher %d: schedule %d not synced: %v", teacherID, f.Item, f.Err), f.Err)
	}
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
