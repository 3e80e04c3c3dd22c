package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/casitakids/backend/core/notify"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notify.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) CreateNotification(_ context.Context, n notify.Notification) (notify.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[n.ID] = &n
	return n, nil
}

func (repo *notificationRepository) QueryNotificationsByUser(_ context.Context, userID int) ([]notify.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var notifications []notify.Notification
	for _, n := range repo.db.table {
		if n.UserID == userID {
			notifications = append(notifications, *n)
		}
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (repo *notificationRepository) GetNotificationByID(_ context.Context, id uuid.UUID) (notify.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if n, ok := repo.db.table[id]; ok {
		return *n, nil
	}
	return notify.Notification{}, notify.ErrNotFound
}

func (repo *notificationRepository) MarkNotificationRead(_ context.Context, id uuid.UUID) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	n, ok := repo.db.table[id]
	if !ok {
		return notify.ErrNotFound
	}
	n.Read = true
	return nil
}

func (repo *notificationRepository) DeleteNotification(_ context.Context, id uuid.UUID) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, id)
	return nil
}
