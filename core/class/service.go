package class

import (
	"context"
	"errors"

	"github.com/casitakids/backend/core"
)

var ErrNotFound = errors.New("class not found")

type (
	Repository interface {
		CreateClass(ctx context.Context, cl Class) (Class, error)
		QueryAllClasses(ctx context.Context) ([]Class, error)
		QueryClassesByCampus(ctx context.Context, campusID int) ([]Class, error)
		GetClassByID(ctx context.Context, id int) (Class, error)
		GetClassesByID(ctx context.Context, ids ...int) ([]Class, error)
		UpdateClass(ctx context.Context, cl Class) (Class, error)
		DeleteClass(ctx context.Context, id int) error
	}

	Service interface {
		Create(ctx context.Context, nc NewClass) (Class, error)
		QueryAll(ctx context.Context) ([]Class, error)
		QueryByCampus(ctx context.Context, campusID int) ([]Class, error)
		GetByID(ctx context.Context, id int) (Class, error)
		GetByIDs(ctx context.Context, ids ...int) ([]Class, error)
		Update(ctx context.Context, id int, uc UpdateClass) (Class, error)
		Delete(ctx context.Context, id int) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nc NewClass) (Class, error) {
	track, err := core.ParseTrack(nc.Track)
	if err != nil {
		return Class{}, core.NewValidationError(err, core.FieldError{Field: "track", Error: err.Error()})
	}
	cl := Class{
		Name:        core.CleanString(nc.Name),
		MaxCapacity: nc.MaxCapacity,
		Program:     Program(nc.Program),
		Track:       track,
		CampusID:    nc.CampusID,
	}
	return svc.repo.CreateClass(ctx, cl)
}

func (svc *service) QueryAll(ctx context.Context) ([]Class, error) {
	return svc.repo.QueryAllClasses(ctx)
}

func (svc *service) QueryByCampus(ctx context.Context, campusID int) ([]Class, error) {
	return svc.repo.QueryClassesByCampus(ctx, campusID)
}

func (svc *service) GetByID(ctx context.Context, id int) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

// GetByIDs fails with ErrNotFound if any of the requested classes is missing.
func (svc *service) GetByIDs(ctx context.Context, ids ...int) ([]Class, error) {
	classes, err := svc.repo.GetClassesByID(ctx, ids...)
	if err != nil {
		return nil, err
	}
	if len(classes) != len(ids) {
		return nil, ErrNotFound
	}
	return classes, nil
}

func (svc *service) Update(ctx context.Context, id int, uc UpdateClass) (Class, error) {
	cl, err := svc.repo.GetClassByID(ctx, id)
	if err != nil {
		return Class{}, err
	}
	if uc.Name != "" {
		cl.Name = core.CleanString(uc.Name)
	}
	if uc.MaxCapacity > 0 {
		cl.MaxCapacity = uc.MaxCapacity
	}
	return svc.repo.UpdateClass(ctx, cl)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteClass(ctx, id)
}
