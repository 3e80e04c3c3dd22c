package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/casitakids/backend/core/teacher"
)

type teacherRow struct {
	ID        int           `db:"id"`
	FirstName string        `db:"first_name"`
	LastName  string        `db:"last_name"`
	Email     string        `db:"email"`
	Phone     string        `db:"phone"`
	CampusID  null.Int      `db:"campus_id"`
	ClassIDs  pq.Int64Array `db:"class_ids"`
	CreatedAt time.Time     `db:"created_at"`
}

func (r teacherRow) teacher() teacher.Teacher {
	t := teacher.Teacher{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		ClassIDs:  intSlice(r.ClassIDs),
		CreatedAt: r.CreatedAt,
	}
	if r.CampusID.Valid {
		id := int(r.CampusID.Int)
		t.CampusID = &id
	}
	return t
}

func teacherSlice(rows []teacherRow) []teacher.Teacher {
	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, r := range rows {
		teachers = append(teachers, r.teacher())
	}
	return teachers
}

func intSlice(arr pq.Int64Array) []int {
	out := make([]int, 0, len(arr))
	for _, v := range arr {
		out = append(out, int(v))
	}
	return out
}

func nullIntFromPtr(p *int) null.Int {
	if p == nil {
		return null.Int{}
	}
	return null.IntFrom(*p)
}

const teacherSelect = `
SELECT t.id, t.first_name, t.last_name, t.email, t.phone, t.campus_id, t.created_at,
       coalesce(array_agg(tc.class_id) FILTER (WHERE tc.class_id IS NOT NULL), '{}') AS class_ids
FROM teacher t
LEFT JOIN teacher_class tc ON tc.teacher_id = t.id`

type teacherRepository struct {
	db *sqlx.DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *sqlx.DB) *teacherRepository {
	return &teacherRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to teacher.ErrNotFound
func (repo teacherRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return teacher.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo teacherRepository) CreateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
INSERT INTO teacher (first_name, last_name, email, phone, campus_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id`
	err = tx.QueryRowxContext(ctx, q, t.FirstName, t.LastName, t.Email, t.Phone, nullIntFromPtr(t.CampusID), t.CreatedAt).Scan(&t.ID)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	if err = setTeacherClasses(ctx, tx, t.ID, t.ClassIDs); err != nil {
		return teacher.Teacher{}, err
	}
	if err = tx.Commit(); err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "committing teacher")
	}
	return t, nil
}

func setTeacherClasses(ctx context.Context, tx *sqlx.Tx, teacherID int, classIDs []int) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM teacher_class WHERE teacher_id = $1`, teacherID); err != nil {
		return errors.Wrap(err, "clearing teacher classes")
	}
	for _, classID := range classIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO teacher_class (teacher_id, class_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			teacherID, classID)
		if err != nil {
			return errors.Wrap(err, "linking teacher class")
		}
	}
	return nil
}

func (repo teacherRepository) QueryAllTeachers(ctx context.Context) ([]teacher.Teacher, error) {
	var rows []teacherRow
	if err := repo.db.SelectContext(ctx, &rows, teacherSelect+` GROUP BY t.id ORDER BY t.last_name, t.first_name`); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	return teacherSlice(rows), nil
}

func (repo teacherRepository) QueryTeachersByCampus(ctx context.Context, campusID int) ([]teacher.Teacher, error) {
	var rows []teacherRow
	q := teacherSelect + ` WHERE t.campus_id = $1 GROUP BY t.id ORDER BY t.last_name, t.first_name`
	if err := repo.db.SelectContext(ctx, &rows, q, campusID); err != nil {
		return nil, errors.Wrap(err, "querying campus teachers")
	}
	return teacherSlice(rows), nil
}

func (repo teacherRepository) QueryTeachersByClass(ctx context.Context, classID int) ([]teacher.Teacher, error) {
	var rows []teacherRow
	q := teacherSelect + `
WHERE t.id IN (SELECT teacher_id FROM teacher_class WHERE class_id = $1)
GROUP BY t.id
ORDER BY t.last_name, t.first_name`
	if err := repo.db.SelectContext(ctx, &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying class teachers")
	}
	return teacherSlice(rows), nil
}

func (repo teacherRepository) GetTeacherByID(ctx context.Context, id int) (teacher.Teacher, error) {
	var r teacherRow
	if err := repo.db.GetContext(ctx, &r, teacherSelect+` WHERE t.id = $1 GROUP BY t.id`, id); err != nil {
		return teacher.Teacher{}, repo.trapNoRowsErr(err, "getting teacher")
	}
	return r.teacher(), nil
}

func (repo teacherRepository) GetTeachersByID(ctx context.Context, ids ...int) ([]teacher.Teacher, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []teacherRow
	q := teacherSelect + ` WHERE t.id = ANY($1) GROUP BY t.id`
	if err := repo.db.SelectContext(ctx, &rows, q, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "querying teachers by id")
	}
	return teacherSlice(rows), nil
}

func (repo teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
UPDATE teacher
SET first_name = $2, last_name = $3, email = $4, phone = $5, campus_id = $6
WHERE id = $1`
	res, err := tx.ExecContext(ctx, q, t.ID, t.FirstName, t.LastName, t.Email, t.Phone, nullIntFromPtr(t.CampusID))
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	if t.ClassIDs != nil {
		if err = setTeacherClasses(ctx, tx, t.ID, t.ClassIDs); err != nil {
			return teacher.Teacher{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "committing teacher")
	}
	return t, nil
}

func (repo teacherRepository) DeleteTeacher(ctx context.Context, id int) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM teacher WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return nil
}
