package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/casitakids/backend/core/campus"
)

type campusRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Nickname  string    `db:"nickname"`
	Address   string    `db:"address"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
}

func (r campusRow) campus() campus.Campus {
	return campus.Campus{
		ID:        r.ID,
		Name:      r.Name,
		Nickname:  r.Nickname,
		Address:   r.Address,
		Phone:     r.Phone,
		CreatedAt: r.CreatedAt,
	}
}

type campusRepository struct {
	db *sqlx.DB
}

var _ campus.Repository = (*campusRepository)(nil) // interface compliance check

func NewCampusRepository(db *sqlx.DB) *campusRepository {
	return &campusRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to campus.ErrNotFound
func (repo campusRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return campus.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo campusRepository) CreateCampus(ctx context.Context, cp campus.Campus) (campus.Campus, error) {
	const q = `
INSERT INTO campus (name, nickname, address, phone, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err := repo.db.QueryRowxContext(ctx, q, cp.Name, cp.Nickname, cp.Address, cp.Phone, cp.CreatedAt).Scan(&cp.ID)
	if err != nil {
		return campus.Campus{}, errors.Wrap(err, "inserting campus")
	}
	return cp, nil
}

func (repo campusRepository) QueryAllCampuses(ctx context.Context) ([]campus.Campus, error) {
	const q = `
SELECT id, name, nickname, address, phone, created_at
FROM campus
ORDER BY name`
	var rows []campusRow
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying campuses")
	}
	campuses := make([]campus.Campus, 0, len(rows))
	for _, r := range rows {
		campuses = append(campuses, r.campus())
	}
	return campuses, nil
}

func (repo campusRepository) GetCampusByID(ctx context.Context, id int) (campus.Campus, error) {
	const q = `
SELECT id, name, nickname, address, phone, created_at
FROM campus
WHERE id = $1`
	var r campusRow
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		return campus.Campus{}, repo.trapNoRowsErr(err, "getting campus")
	}
	return r.campus(), nil
}

func (repo campusRepository) UpdateCampus(ctx context.Context, cp campus.Campus) (campus.Campus, error) {
	const q = `
UPDATE campus
SET name = $2, nickname = $3, address = $4, phone = $5
WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, cp.ID, cp.Name, cp.Nickname, cp.Address, cp.Phone)
	if err != nil {
		return campus.Campus{}, errors.Wrap(err, "updating campus")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return campus.Campus{}, campus.ErrNotFound
	}
	return cp, nil
}

func (repo campusRepository) DeleteCampus(ctx context.Context, id int) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM campus WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting campus")
	}
	return nil
}
