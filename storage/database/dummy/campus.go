package dummydb

import (
	"context"
	"sort"

	"github.com/casitakids/backend/core/campus"
)

type campusRepository struct {
	db *campusTable
}

var _ campus.Repository = (*campusRepository)(nil) // interface compliance check

func NewCampusRepository(db *DB) *campusRepository {
	return &campusRepository{db: db.campus}
}

func (repo *campusRepository) query() []campus.Campus {
	campuses := make([]campus.Campus, 0, len(repo.db.table))
	for _, cp := range repo.db.table {
		campuses = append(campuses, *cp)
	}
	sort.Slice(campuses, func(i, j int) bool { return campuses[i].ID < campuses[j].ID })
	return campuses
}

func (repo *campusRepository) CreateCampus(_ context.Context, cp campus.Campus) (campus.Campus, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	cp.ID = repo.db.seq
	repo.db.table[cp.ID] = &cp
	return cp, nil
}

func (repo *campusRepository) QueryAllCampuses(_ context.Context) ([]campus.Campus, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *campusRepository) GetCampusByID(_ context.Context, id int) (campus.Campus, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cp, ok := repo.db.table[id]; ok {
		return *cp, nil
	}
	return campus.Campus{}, campus.ErrNotFound
}

func (repo *campusRepository) UpdateCampus(_ context.Context, cp campus.Campus) (campus.Campus, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[cp.ID]
	if !ok {
		return campus.Campus{}, campus.ErrNotFound
	}
	cp.CreatedAt = orig.CreatedAt
	repo.db.table[cp.ID] = &cp
	return cp, nil
}

func (repo *campusRepository) DeleteCampus(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
