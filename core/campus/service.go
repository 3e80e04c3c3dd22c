package campus

import (
	"context"
	"errors"

	"github.com/casitakids/backend/core"
)

var ErrNotFound = errors.New("campus not found")

type (
	Repository interface {
		CreateCampus(ctx context.Context, cp Campus) (Campus, error)
		QueryAllCampuses(ctx context.Context) ([]Campus, error)
		GetCampusByID(ctx context.Context, id int) (Campus, error)
		UpdateCampus(ctx context.Context, cp Campus) (Campus, error)
		DeleteCampus(ctx context.Context, id int) error
	}

	Service interface {
		Create(ctx context.Context, nc NewCampus) (Campus, error)
		QueryAll(ctx context.Context) ([]Campus, error)
		GetByID(ctx context.Context, id int) (Campus, error)
		Update(ctx context.Context, id int, uc UpdateCampus) (Campus, error)
		Delete(ctx context.Context, id int) error
	}

	service struct {
		repo  Repository
		clock core.Clock
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, clock core.Clock) Service {
	return &service{repo: repo, clock: clock}
}

func (svc *service) Create(ctx context.Context, nc NewCampus) (Campus, error) {
	cp := Campus{
		Name:      core.CleanString(nc.Name),
		Nickname:  core.CleanString(nc.Nickname),
		Address:   core.CleanString(nc.Address),
		Phone:     core.CleanString(nc.Phone),
		CreatedAt: svc.clock.Now(),
	}
	return svc.repo.CreateCampus(ctx, cp)
}

func (svc *service) QueryAll(ctx context.Context) ([]Campus, error) {
	return svc.repo.QueryAllCampuses(ctx)
}

func (svc *service) GetByID(ctx context.Context, id int) (Campus, error) {
	return svc.repo.GetCampusByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id int, uc UpdateCampus) (Campus, error) {
	cp, err := svc.repo.GetCampusByID(ctx, id)
	if err != nil {
		return Campus{}, err
	}
	if uc.Name != "" {
		cp.Name = core.CleanString(uc.Name)
	}
	if uc.Nickname != "" {
		cp.Nickname = core.CleanString(uc.Nickname)
	}
	if uc.Address != "" {
		cp.Address = core.CleanString(uc.Address)
	}
	if uc.Phone != "" {
		cp.Phone = core.CleanString(uc.Phone)
	}
	return svc.repo.UpdateCampus(ctx, cp)
}

func (svc *service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteCampus(ctx, id)
}
