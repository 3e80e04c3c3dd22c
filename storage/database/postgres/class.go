package pgrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/class"
)

type classRow struct {
	ID          int        `db:"id"`
	Name        string     `db:"name"`
	MaxCapacity int        `db:"max_capacity"`
	Program     string     `db:"program"`
	Track       core.Track `db:"track"`
	CampusID    int        `db:"campus_id"`
}

func (r classRow) class() class.Class {
	return class.Class{
		ID:          r.ID,
		Name:        r.Name,
		MaxCapacity: r.MaxCapacity,
		Program:     class.Program(r.Program),
		Track:       r.Track,
		CampusID:    r.CampusID,
	}
}

func classSlice(rows []classRow) []class.Class {
	classes := make([]class.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.class())
	}
	return classes
}

const classSelect = `
SELECT id, name, max_capacity, program, track, campus_id
FROM class`

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) *classRepository {
	return &classRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to class.ErrNotFound
func (repo classRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return class.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo classRepository) CreateClass(ctx context.Context, cl class.Class) (class.Class, error) {
	const q = `
INSERT INTO class (name, max_capacity, program, track, campus_id)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err := repo.db.QueryRowxContext(ctx, q, cl.Name, cl.MaxCapacity, string(cl.Program), cl.Track, cl.CampusID).Scan(&cl.ID)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return cl, nil
}

func (repo classRepository) QueryAllClasses(ctx context.Context) ([]class.Class, error) {
	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, classSelect+` ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying classes")
	}
	return classSlice(rows), nil
}

func (repo classRepository) QueryClassesByCampus(ctx context.Context, campusID int) ([]class.Class, error) {
	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, classSelect+` WHERE campus_id = $1 ORDER BY name`, campusID); err != nil {
		return nil, errors.Wrap(err, "querying campus classes")
	}
	return classSlice(rows), nil
}

func (repo classRepository) GetClassByID(ctx context.Context, id int) (class.Class, error) {
	var r classRow
	if err := repo.db.GetContext(ctx, &r, classSelect+` WHERE id = $1`, id); err != nil {
		return class.Class{}, repo.trapNoRowsErr(err, "getting class")
	}
	return r.class(), nil
}

func (repo classRepository) GetClassesByID(ctx context.Context, ids ...int) ([]class.Class, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, classSelect+` WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "querying classes by id")
	}
	return classSlice(rows), nil
}

func (repo classRepository) UpdateClass(ctx context.Context, cl class.Class) (class.Class, error) {
	const q = `
UPDATE class
SET name = $2, max_capacity = $3
WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, cl.ID, cl.Name, cl.MaxCapacity)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return class.Class{}, class.ErrNotFound
	}
	return cl, nil
}

func (repo classRepository) DeleteClass(ctx context.Context, id int) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM class WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return nil
}
