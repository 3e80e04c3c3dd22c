package dummydb

import (
	"context"
	"sort"

	"github.com/casitakids/backend/core/class"
)

type classRepository struct {
	db *classTable
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) *classRepository {
	return &classRepository{db: db.class}
}

func (repo *classRepository) query() []class.Class {
	classes := make([]class.Class, 0, len(repo.db.table))
	for _, cl := range repo.db.table {
		classes = append(classes, *cl)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].ID < classes[j].ID })
	return classes
}

func (repo *classRepository) CreateClass(_ context.Context, cl class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	cl.ID = repo.db.seq
	repo.db.table[cl.ID] = &cl
	return cl, nil
}

func (repo *classRepository) QueryAllClasses(_ context.Context) ([]class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *classRepository) QueryClassesByCampus(_ context.Context, campusID int) ([]class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var classes []class.Class
	for _, cl := range repo.query() {
		if cl.CampusID == campusID {
			classes = append(classes, cl)
		}
	}
	return classes, nil
}

func (repo *classRepository) GetClassByID(_ context.Context, id int) (class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cl, ok := repo.db.table[id]; ok {
		return *cl, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) GetClassesByID(_ context.Context, ids ...int) ([]class.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]class.Class, 0, len(ids))
	for _, id := range ids {
		if cl, ok := repo.db.table[id]; ok {
			classes = append(classes, *cl)
		}
	}
	return classes, nil
}

func (repo *classRepository) UpdateClass(_ context.Context, cl class.Class) (class.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[cl.ID]
	if !ok {
		return class.Class{}, class.ErrNotFound
	}
	orig.Name = cl.Name
	orig.MaxCapacity = cl.MaxCapacity
	return *orig, nil
}

func (repo *classRepository) DeleteClass(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
