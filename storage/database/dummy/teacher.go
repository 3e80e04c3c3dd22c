package dummydb

import (
	"context"
	"sort"

	"github.com/casitakids/backend/core/teacher"
)

type teacherRepository struct {
	db *teacherTable
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) *teacherRepository {
	return &teacherRepository{db: db.teacher}
}

func (repo *teacherRepository) query() []teacher.Teacher {
	teachers := make([]teacher.Teacher, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		teachers = append(teachers, *t)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	return teachers
}

func (repo *teacherRepository) CreateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	t.ID = repo.db.seq
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *teacherRepository) QueryAllTeachers(_ context.Context) ([]teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *teacherRepository) QueryTeachersByCampus(_ context.Context, campusID int) ([]teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var teachers []teacher.Teacher
	for _, t := range repo.query() {
		if t.CampusID != nil && *t.CampusID == campusID {
			teachers = append(teachers, t)
		}
	}
	return teachers, nil
}

func (repo *teacherRepository) QueryTeachersByClass(_ context.Context, classID int) ([]teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var teachers []teacher.Teacher
	for _, t := range repo.query() {
		if t.HasClass(classID) {
			teachers = append(teachers, t)
		}
	}
	return teachers, nil
}

func (repo *teacherRepository) GetTeacherByID(_ context.Context, id int) (teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) GetTeachersByID(_ context.Context, ids ...int) ([]teacher.Teacher, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	teachers := make([]teacher.Teacher, 0, len(ids))
	for _, id := range ids {
		if t, ok := repo.db.table[id]; ok {
			teachers = append(teachers, *t)
		}
	}
	return teachers, nil
}

func (repo *teacherRepository) UpdateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[t.ID]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	t.CreatedAt = orig.CreatedAt
	if t.ClassIDs == nil {
		t.ClassIDs = orig.ClassIDs
	}
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *teacherRepository) DeleteTeacher(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
