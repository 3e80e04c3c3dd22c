package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/casitakids/backend/core/notify"
)

type notificationRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    int       `db:"user_id"`
	Title     string    `db:"title"`
	Message   string    `db:"message"`
	Read      bool      `db:"read"`
	CreatedAt time.Time `db:"created_at"`
}

func (r notificationRow) notification() notify.Notification {
	return notify.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Message:   r.Message,
		Read:      r.Read,
		CreatedAt: r.CreatedAt,
	}
}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notify.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo notificationRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notify.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo notificationRepository) CreateNotification(ctx context.Context, n notify.Notification) (notify.Notification, error) {
	const q = `
INSERT INTO notification (id, user_id, title, message, read, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q, n.ID, n.UserID, n.Title, n.Message, n.Read, n.CreatedAt)
	if err != nil {
		return notify.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

func (repo notificationRepository) QueryNotificationsByUser(ctx context.Context, userID int) ([]notify.Notification, error) {
	const q = `
SELECT id, user_id, title, message, read, created_at
FROM notification
WHERE user_id = $1
ORDER BY created_at DESC`
	var rows []notificationRow
	if err := repo.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifications := make([]notify.Notification, 0, len(rows))
	for _, r := range rows {
		notifications = append(notifications, r.notification())
	}
	return notifications, nil
}

func (repo notificationRepository) GetNotificationByID(ctx context.Context, id uuid.UUID) (notify.Notification, error) {
	const q = `
SELECT id, user_id, title, message, read, created_at
FROM notification
WHERE id = $1`
	var r notificationRow
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		return notify.Notification{}, repo.trapNoRowsErr(err, "getting notification")
	}
	return r.notification(), nil
}

func (repo notificationRepository) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE notification SET read = true WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notify.ErrNotFound
	}
	return nil
}

func (repo notificationRepository) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM notification WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	return nil
}
