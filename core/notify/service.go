package notify

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/google/uuid"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/teacher"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		QueryNotificationsByUser(ctx context.Context, userID int) ([]Notification, error)
		GetNotificationByID(ctx context.Context, id uuid.UUID) (Notification, error)
		MarkNotificationRead(ctx context.Context, id uuid.UUID) error
		DeleteNotification(ctx context.Context, id uuid.UUID) error
	}

	// RecipientDirectory resolves a notified user to an email address;
	// satisfied by teacher.Repository.
	RecipientDirectory interface {
		GetTeacherByID(ctx context.Context, id int) (teacher.Teacher, error)
	}

	Service interface {
		// Notify stores the notification and emails the recipient.
		// Failures are logged and swallowed.
		Notify(ctx context.Context, userID int, title, message string)
		QueryByUser(ctx context.Context, userID int) ([]Notification, error)
		MarkRead(ctx context.Context, id uuid.UUID) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	service struct {
		repo       Repository
		recipients RecipientDirectory
		mail       core.EmailService
		clock      core.Clock
		log        core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, recipients RecipientDirectory, mail core.EmailService, clock core.Clock, log core.Logger) Service {
	return &service{repo: repo, recipients: recipients, mail: mail, clock: clock, log: log}
}

func (svc *service) Notify(ctx context.Context, userID int, title, message string) {
	n := Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		CreatedAt: svc.clock.Now(),
	}
	if _, err := svc.repo.CreateNotification(ctx, n); err != nil {
		svc.log.Error(fmt.Sprintf("storing notification for user %d: %v", userID, err), err)
		return
	}

	rcpt, err := svc.recipients.GetTeacherByID(ctx, userID)
	if err != nil {
		svc.log.Warning(fmt.Sprintf("notification %s stored but recipient %d not resolved: %v", n.ID, userID, err))
		return
	}
	if rcpt.Email == "" {
		return
	}
	svc.mail.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: rcpt.FullName(), Address: rcpt.Email}},
		Subject: title,
		Body:    message,
	})
}

func (svc *service) QueryByUser(ctx context.Context, userID int) ([]Notification, error) {
	return svc.repo.QueryNotificationsByUser(ctx, userID)
}

func (svc *service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if _, err := svc.repo.GetNotificationByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.MarkNotificationRead(ctx, id)
}

func (svc *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := svc.repo.GetNotificationByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteNotification(ctx, id)
}
