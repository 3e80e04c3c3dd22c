package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/student"
)

type studentRow struct {
	ID          int       `db:"id"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	DateOfBirth time.Time `db:"date_of_birth"`
	Gender      string    `db:"gender"`
	Notes       string    `db:"notes"`
	CampusID    null.Int  `db:"campus_id"`

	StartDate null.Time `db:"start_date"`
	EndDate   null.Time `db:"end_date"`

	DaysEnrolled     core.WeekdaySet `db:"days_enrolled"`
	BeforeSchoolDays core.WeekdaySet `db:"before_school_days"`
	AfterSchoolDays  core.WeekdaySet `db:"after_school_days"`
	ClassIDs         pq.Int64Array   `db:"class_ids"`

	TransitionStartDate        null.Time       `db:"transition_start_date"`
	TransitionDaysEnrolled     core.WeekdaySet `db:"transition_days_enrolled"`
	TransitionBeforeSchoolDays core.WeekdaySet `db:"transition_before_school_days"`
	TransitionAfterSchoolDays  core.WeekdaySet `db:"transition_after_school_days"`
	TransitionClassIDs         pq.Int64Array   `db:"transition_class_ids"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r studentRow) student() student.Student {
	st := student.Student{
		ID:          r.ID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		DateOfBirth: r.DateOfBirth,
		Gender:      r.Gender,
		Notes:       r.Notes,

		StartDate: timePtr(r.StartDate),
		EndDate:   timePtr(r.EndDate),

		DaysEnrolled:     r.DaysEnrolled,
		BeforeSchoolDays: r.BeforeSchoolDays,
		AfterSchoolDays:  r.AfterSchoolDays,
		ClassIDs:         intSlice(r.ClassIDs),

		TransitionStartDate:        timePtr(r.TransitionStartDate),
		TransitionDaysEnrolled:     r.TransitionDaysEnrolled,
		TransitionBeforeSchoolDays: r.TransitionBeforeSchoolDays,
		TransitionAfterSchoolDays:  r.TransitionAfterSchoolDays,
		TransitionClassIDs:         intSlice(r.TransitionClassIDs),

		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.CampusID.Valid {
		id := int(r.CampusID.Int)
		st.CampusID = &id
	}
	return st
}

func studentSlice(rows []studentRow) []student.Student {
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.student())
	}
	return students
}

func timePtr(t null.Time) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func nullTimeFromPtr(p *time.Time) null.Time {
	if p == nil {
		return null.Time{}
	}
	return null.TimeFrom(p.UTC())
}

const studentSelect = `
SELECT s.id, s.first_name, s.last_name, s.date_of_birth, s.gender, s.notes, s.campus_id,
       s.start_date, s.end_date,
       s.days_enrolled, s.before_school_days, s.after_school_days,
       s.transition_start_date, s.transition_days_enrolled,
       s.transition_before_school_days, s.transition_after_school_days,
       s.created_at, s.updated_at,
       coalesce(array_agg(sc.class_id) FILTER (WHERE sc.class_id IS NOT NULL AND NOT sc.transition), '{}') AS class_ids,
       coalesce(array_agg(sc.class_id) FILTER (WHERE sc.class_id IS NOT NULL AND sc.transition), '{}') AS transition_class_ids
FROM student s
LEFT JOIN student_class sc ON sc.student_id = s.id`

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to student.ErrNotFound
func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
INSERT INTO student (
    first_name, last_name, date_of_birth, gender, notes, campus_id,
    start_date, end_date,
    days_enrolled, before_school_days, after_school_days,
    transition_start_date, transition_days_enrolled,
    transition_before_school_days, transition_after_school_days,
    created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
RETURNING id`
	err = tx.QueryRowxContext(ctx, q,
		st.FirstName, st.LastName, st.DateOfBirth, st.Gender, st.Notes, nullIntFromPtr(st.CampusID),
		nullTimeFromPtr(st.StartDate), nullTimeFromPtr(st.EndDate),
		st.DaysEnrolled, st.BeforeSchoolDays, st.AfterSchoolDays,
		nullTimeFromPtr(st.TransitionStartDate), st.TransitionDaysEnrolled,
		st.TransitionBeforeSchoolDays, st.TransitionAfterSchoolDays,
		st.CreatedAt, st.UpdatedAt,
	).Scan(&st.ID)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	if err = setStudentClasses(ctx, tx, st.ID, st.ClassIDs, false); err != nil {
		return student.Student{}, err
	}
	if err = setStudentClasses(ctx, tx, st.ID, st.TransitionClassIDs, true); err != nil {
		return student.Student{}, err
	}
	if err = tx.Commit(); err != nil {
		return student.Student{}, errors.Wrap(err, "committing student")
	}
	return st, nil
}

func setStudentClasses(ctx context.Context, tx *sqlx.Tx, studentID int, classIDs []int, transition bool) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM student_class WHERE student_id = $1 AND transition = $2`, studentID, transition)
	if err != nil {
		return errors.Wrap(err, "clearing student classes")
	}
	for _, classID := range classIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO student_class (student_id, class_id, transition) VALUES ($1, $2, $3) ON CONFLICT DO NOTHING`,
			studentID, classID, transition)
		if err != nil {
			return errors.Wrap(err, "linking student class")
		}
	}
	return nil
}

func (repo studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, studentSelect+` GROUP BY s.id ORDER BY s.last_name, s.first_name`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return studentSlice(rows), nil
}

func (repo studentRepository) QueryStudentsByCampus(ctx context.Context, campusID int) ([]student.Student, error) {
	var rows []studentRow
	q := studentSelect + ` WHERE s.campus_id = $1 GROUP BY s.id ORDER BY s.last_name, s.first_name`
	if err := repo.db.SelectContext(ctx, &rows, q, campusID); err != nil {
		return nil, errors.Wrap(err, "querying campus students")
	}
	return studentSlice(rows), nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	var r studentRow
	if err := repo.db.GetContext(ctx, &r, studentSelect+` WHERE s.id = $1 GROUP BY s.id`, id); err != nil {
		return student.Student{}, repo.trapNoRowsErr(err, "getting student")
	}
	return r.student(), nil
}

func (repo studentRepository) GetStudentsByID(ctx context.Context, ids ...int) ([]student.Student, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []studentRow
	q := studentSelect + ` WHERE s.id = ANY($1) GROUP BY s.id`
	if err := repo.db.SelectContext(ctx, &rows, q, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "querying students by id")
	}
	return studentSlice(rows), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
UPDATE student
SET first_name = $2, last_name = $3, gender = $4, notes = $5, campus_id = $6,
    start_date = $7, end_date = $8,
    days_enrolled = $9, before_school_days = $10, after_school_days = $11,
    transition_start_date = $12, transition_days_enrolled = $13,
    transition_before_school_days = $14, transition_after_school_days = $15,
    updated_at = $16
WHERE id = $1`
	res, err := tx.ExecContext(ctx, q,
		st.ID, st.FirstName, st.LastName, st.Gender, st.Notes, nullIntFromPtr(st.CampusID),
		nullTimeFromPtr(st.StartDate), nullTimeFromPtr(st.EndDate),
		st.DaysEnrolled, st.BeforeSchoolDays, st.AfterSchoolDays,
		nullTimeFromPtr(st.TransitionStartDate), st.TransitionDaysEnrolled,
		st.TransitionBeforeSchoolDays, st.TransitionAfterSchoolDays,
		st.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	if err = setStudentClasses(ctx, tx, st.ID, st.ClassIDs, false); err != nil {
		return student.Student{}, err
	}
	if err = setStudentClasses(ctx, tx, st.ID, st.TransitionClassIDs, true); err != nil {
		return student.Student{}, err
	}
	if err = tx.Commit(); err != nil {
		return student.Student{}, errors.Wrap(err, "committing student")
	}
	return st, nil
}

func (repo studentRepository) DeleteStudent(ctx context.Context, id int) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM student WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return nil
}

func (repo studentRepository) QueryStudentsByClass(ctx context.Context, classID int) ([]student.Student, error) {
	return repo.queryByClass(ctx, classID, false)
}

func (repo studentRepository) QueryStudentsByTransitionClass(ctx context.Context, classID int) ([]student.Student, error) {
	return repo.queryByClass(ctx, classID, true)
}

func (repo studentRepository) queryByClass(ctx context.Context, classID int, transition bool) ([]student.Student, error) {
	var rows []studentRow
	q := studentSelect + `
WHERE s.id IN (SELECT student_id FROM student_class WHERE class_id = $1 AND transition = $2)
GROUP BY s.id`
	if err := repo.db.SelectContext(ctx, &rows, q, classID, transition); err != nil {
		return nil, errors.Wrap(err, "querying class students")
	}
	return studentSlice(rows), nil
}

func (repo studentRepository) QueryStudentsDueTransition(ctx context.Context, day time.Time) ([]student.Student, error) {
	var rows []studentRow
	q := studentSelect + ` WHERE s.transition_start_date = $1 GROUP BY s.id`
	if err := repo.db.SelectContext(ctx, &rows, q, day); err != nil {
		return nil, errors.Wrap(err, "querying students due transition")
	}
	return studentSlice(rows), nil
}
