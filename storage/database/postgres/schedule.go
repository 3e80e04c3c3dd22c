package pgrepos

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/schedule"
)

type planningRow struct {
	ID        int       `db:"id"`
	Year      int       `db:"year"`
	Month     int       `db:"month"`
	Week      int       `db:"week"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	CampusID  int       `db:"campus_id"`
	ClassID   int       `db:"class_id"`
	Notes     string    `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
}

func (r planningRow) planning() schedule.Planning {
	return schedule.Planning{
		ID:        r.ID,
		Year:      r.Year,
		Month:     r.Month,
		Week:      r.Week,
		StartDate: r.StartDate.UTC(),
		EndDate:   r.EndDate.UTC(),
		CampusID:  r.CampusID,
		ClassID:   r.ClassID,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
	}
}

type scheduleRow struct {
	ID         int           `db:"id"`
	PlanningID int           `db:"planning_id"`
	Day        core.Weekday  `db:"day"`
	Date       time.Time     `db:"date"`
	AdminID    int           `db:"admin_id"`
	Notes      string        `db:"notes"`
	TeacherIDs pq.Int64Array `db:"teacher_ids"`
	StudentIDs pq.Int64Array `db:"student_ids"`
	ClassID    int           `db:"class_id"`
}

func (r scheduleRow) schedule() schedule.DailySchedule {
	return schedule.DailySchedule{
		ID:         r.ID,
		PlanningID: r.PlanningID,
		Day:        r.Day,
		Date:       r.Date.UTC(),
		TeacherIDs: intSlice(r.TeacherIDs),
		StudentIDs: intSlice(r.StudentIDs),
		AdminID:    r.AdminID,
		Notes:      r.Notes,
	}
}

func (r scheduleRow) classSchedule() schedule.ClassSchedule {
	return schedule.ClassSchedule{DailySchedule: r.schedule(), ClassID: r.ClassID}
}

const planningSelect = `
SELECT id, year, month, week, start_date, end_date, campus_id, class_id, notes, created_at
FROM planning`

const scheduleSelect = `
SELECT ds.id, ds.planning_id, ds.day, ds.date, ds.admin_id, ds.notes, p.class_id,
       coalesce(array_agg(DISTINCT st.teacher_id) FILTER (WHERE st.teacher_id IS NOT NULL), '{}') AS teacher_ids,
       coalesce(array_agg(DISTINCT ss.student_id) FILTER (WHERE ss.student_id IS NOT NULL), '{}') AS student_ids
FROM daily_schedule ds
JOIN planning p ON p.id = ds.planning_id
LEFT JOIN schedule_teacher st ON st.schedule_id = ds.id
LEFT JOIN schedule_student ss ON ss.schedule_id = ds.id`

const scheduleGroupBy = ` GROUP BY ds.id, p.class_id`

type scheduleRepository struct {
	db *sqlx.DB
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(db *sqlx.DB) *scheduleRepository {
	return &scheduleRepository{db: db}
}

func (repo scheduleRepository) trapPlanningErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.ErrPlanningNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo scheduleRepository) trapScheduleErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return schedule.ErrScheduleNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo scheduleRepository) CreatePlanning(ctx context.Context, p schedule.Planning) (schedule.Planning, error) {
	const q = `
INSERT INTO planning (year, month, week, start_date, end_date, campus_id, class_id, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`
	err := repo.db.QueryRowxContext(ctx, q,
		p.Year, p.Month, p.Week, p.StartDate, p.EndDate, p.CampusID, p.ClassID, p.Notes, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return schedule.Planning{}, schedule.ErrPlanningExists
		}
		return schedule.Planning{}, errors.Wrap(err, "inserting planning")
	}
	return p, nil
}

func (repo scheduleRepository) FindPlanningByPeriod(ctx context.Context, period schedule.Period) (schedule.Planning, error) {
	const q = planningSelect + `
WHERE campus_id = $1 AND class_id = $2 AND year = $3 AND month = $4 AND week = $5`
	var r planningRow
	err := repo.db.GetContext(ctx, &r, q, period.CampusID, period.ClassID, period.Year, period.Month, period.Week)
	if err != nil {
		return schedule.Planning{}, repo.trapPlanningErr(err, "finding planning")
	}
	return r.planning(), nil
}

func (repo scheduleRepository) GetPlanningByID(ctx context.Context, id int) (schedule.Planning, error) {
	var r planningRow
	if err := repo.db.GetContext(ctx, &r, planningSelect+` WHERE id = $1`, id); err != nil {
		return schedule.Planning{}, repo.trapPlanningErr(err, "getting planning")
	}
	return r.planning(), nil
}

func (repo scheduleRepository) QueryPlannings(ctx context.Context, f schedule.PlanningFilter) ([]schedule.Planning, error) {
	q := planningSelect + ` WHERE true`
	args := make([]interface{}, 0, 5)
	add := func(clause string, v interface{}) {
		args = append(args, v)
		q += clause
	}
	if f.CampusID != 0 {
		add(` AND campus_id = $`+strconv.Itoa(len(args)+1), f.CampusID)
	}
	if f.ClassID != 0 {
		add(` AND class_id = $`+strconv.Itoa(len(args)+1), f.ClassID)
	}
	if f.Year != 0 {
		add(` AND year = $`+strconv.Itoa(len(args)+1), f.Year)
	}
	if f.Month != 0 {
		add(` AND month = $`+strconv.Itoa(len(args)+1), f.Month)
	}
	if f.Week != nil {
		add(` AND week = $`+strconv.Itoa(len(args)+1), *f.Week)
	}
	q += ` ORDER BY year, month, week`

	var rows []planningRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying plannings")
	}
	plannings := make([]schedule.Planning, 0, len(rows))
	for _, r := range rows {
		plannings = append(plannings, r.planning())
	}
	return plannings, nil
}

func (repo scheduleRepository) UpdatePlanningNotes(ctx context.Context, id int, notes string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE planning SET notes = $2 WHERE id = $1`, id, notes)
	if err != nil {
		return errors.Wrap(err, "updating planning")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrPlanningNotFound
	}
	return nil
}

func (repo scheduleRepository) DeletePlanning(ctx context.Context, id int) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM planning WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting planning")
	}
	return nil
}

func (repo scheduleRepository) CreateSchedule(ctx context.Context, ds schedule.DailySchedule) (schedule.DailySchedule, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return schedule.DailySchedule{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
INSERT INTO daily_schedule (planning_id, day, date, admin_id, notes)
VALUES ($1, $2, $3, $4, $5)
RETURNING id`
	err = tx.QueryRowxContext(ctx, q, ds.PlanningID, ds.Day, ds.Date, ds.AdminID, ds.Notes).Scan(&ds.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return schedule.DailySchedule{}, schedule.ErrScheduleExists
		}
		return schedule.DailySchedule{}, errors.Wrap(err, "inserting daily schedule")
	}
	for _, teacherID := range ds.TeacherIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO schedule_teacher (schedule_id, teacher_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			ds.ID, teacherID)
		if err != nil {
			return schedule.DailySchedule{}, errors.Wrap(err, "linking schedule teacher")
		}
	}
	for _, studentID := range ds.StudentIDs {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO schedule_student (schedule_id, student_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			ds.ID, studentID)
		if err != nil {
			return schedule.DailySchedule{}, errors.Wrap(err, "linking schedule student")
		}
	}
	if err = tx.Commit(); err != nil {
		return schedule.DailySchedule{}, errors.Wrap(err, "committing daily schedule")
	}
	return ds, nil
}

func (repo scheduleRepository) GetScheduleByID(ctx context.Context, id int) (schedule.DailySchedule, error) {
	var r scheduleRow
	q := scheduleSelect + ` WHERE ds.id = $1` + scheduleGroupBy
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		return schedule.DailySchedule{}, repo.trapScheduleErr(err, "getting daily schedule")
	}
	return r.schedule(), nil
}

func (repo scheduleRepository) QuerySchedulesByPlanning(ctx context.Context, planningID int) ([]schedule.DailySchedule, error) {
	q := scheduleSelect + ` WHERE ds.planning_id = $1` + scheduleGroupBy + ` ORDER BY ds.date`
	return repo.querySchedules(ctx, q, planningID)
}

func (repo scheduleRepository) QueryAllSchedules(ctx context.Context, day *core.Weekday) ([]schedule.DailySchedule, error) {
	if day != nil {
		q := scheduleSelect + ` WHERE ds.day = $1` + scheduleGroupBy + ` ORDER BY ds.date`
		return repo.querySchedules(ctx, q, *day)
	}
	return repo.querySchedules(ctx, scheduleSelect+scheduleGroupBy+` ORDER BY ds.date`)
}

func (repo scheduleRepository) querySchedules(ctx context.Context, q string, args ...interface{}) ([]schedule.DailySchedule, error) {
	var rows []scheduleRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying daily schedules")
	}
	schedules := make([]schedule.DailySchedule, 0, len(rows))
	for _, r := range rows {
		schedules = append(schedules, r.schedule())
	}
	return schedules, nil
}

func (repo scheduleRepository) UpdateScheduleNotes(ctx context.Context, id int, notes string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE daily_schedule SET notes = $2 WHERE id = $1`, id, notes)
	if err != nil {
		return errors.Wrap(err, "updating daily schedule")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrScheduleNotFound
	}
	return nil
}

func (repo scheduleRepository) DeleteSchedule(ctx context.Context, id int) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM daily_schedule WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting daily schedule")
	}
	return nil
}

func (repo scheduleRepository) QueryFutureSchedules(ctx context.Context, classIDs []int, from time.Time) ([]schedule.ClassSchedule, error) {
	q := scheduleSelect + ` WHERE p.class_id = ANY($1) AND ds.date >= $2` + scheduleGroupBy + ` ORDER BY ds.date`
	return repo.queryClassSchedules(ctx, q, pq.Array(classIDs), from)
}

func (repo scheduleRepository) QueryFutureSchedulesWithStudent(ctx context.Context, classID, studentID int, from time.Time) ([]schedule.ClassSchedule, error) {
	q := scheduleSelect + `
WHERE p.class_id = $1 AND ds.date >= $3
  AND EXISTS (SELECT 1 FROM schedule_student x WHERE x.schedule_id = ds.id AND x.student_id = $2)` +
		scheduleGroupBy + ` ORDER BY ds.date`
	return repo.queryClassSchedules(ctx, q, classID, studentID, from)
}

func (repo scheduleRepository) QueryFutureSchedulesWithTeacher(ctx context.Context, classID, teacherID int, from time.Time) ([]schedule.ClassSchedule, error) {
	q := scheduleSelect + `
WHERE p.class_id = $1 AND ds.date >= $3
  AND EXISTS (SELECT 1 FROM schedule_teacher x WHERE x.schedule_id = ds.id AND x.teacher_id = $2)` +
		scheduleGroupBy + ` ORDER BY ds.date`
	return repo.queryClassSchedules(ctx, q, classID, teacherID, from)
}

func (repo scheduleRepository) queryClassSchedules(ctx context.Context, q string, args ...interface{}) ([]schedule.ClassSchedule, error) {
	var rows []scheduleRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying future schedules")
	}
	schedules := make([]schedule.ClassSchedule, 0, len(rows))
	for _, r := range rows {
		schedules = append(schedules, r.classSchedule())
	}
	return schedules, nil
}

func (repo scheduleRepository) AddStudentToSchedule(ctx context.Context, scheduleID, studentID int) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO schedule_student (schedule_id, student_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		scheduleID, studentID)
	return errors.Wrap(err, "adding student to schedule")
}

func (repo scheduleRepository) RemoveStudentFromSchedule(ctx context.Context, scheduleID, studentID int) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM schedule_student WHERE schedule_id = $1 AND student_id = $2`,
		scheduleID, studentID)
	return errors.Wrap(err, "removing student from schedule")
}

func (repo scheduleRepository) AddTeacherToSchedule(ctx context.Context, scheduleID, teacherID int) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO schedule_teacher (schedule_id, teacher_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		scheduleID, teacherID)
	return errors.Wrap(err, "adding teacher to schedule")
}

func (repo scheduleRepository) RemoveTeacherFromSchedule(ctx context.Context, scheduleID, teacherID int) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM schedule_teacher WHERE schedule_id = $1 AND teacher_id = $2`,
		scheduleID, teacherID)
	return errors.Wrap(err, "removing teacher from schedule")
}
