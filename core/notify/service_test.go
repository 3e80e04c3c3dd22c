package notify_test

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/notify"
	"github.com/casitakids/backend/core/teacher"
	emailsvc "github.com/casitakids/backend/services/email"
	logsvc "github.com/casitakids/backend/services/logger"
	dummydb "github.com/casitakids/backend/storage/database/dummy"
)

func setup(t *testing.T) (notify.Service, notify.Repository, teacher.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}
	emailsvc.ClearSentMessages()

	conf := &core.Config{AppName: "Casita", DefaultFromEmail: "noreply@casita.test"}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	clock := core.FixedClock{T: time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)}

	repo := dummydb.NewNotificationRepository(db)
	teacherRepo := dummydb.NewTeacherRepository(db)
	svc := notify.NewService(repo, teacherRepo, mailSvc, clock, logger)
	return svc, repo, teacherRepo
}

func Test_service_Notify(t *testing.T) {
	svc, _, teacherRepo := setup(t)
	ctx := context.Background()

	tch, err := teacherRepo.CreateTeacher(ctx, teacher.Teacher{
		FirstName: "Ada", LastName: "King", Email: "ada@casita.test",
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed, %v", err)
	}

	svc.Notify(ctx, tch.ID, "New Daily Schedule", "You have a new daily schedule for Monday in Maple Room")

	got, err := svc.QueryByUser(ctx, tch.ID)
	if err != nil {
		t.Fatalf("QueryByUser() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("QueryByUser() returned %d notifications, want 1", len(got))
	}
	n := got[0]
	if n.Title != "New Daily Schedule" || n.Read {
		t.Errorf("notification = %+v, want unread with title %q", n, "New Daily Schedule")
	}

	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("sent %d emails, want 1", len(emailsvc.SentMessages))
	}
	msg := emailsvc.SentMessages[0]
	if msg.To[0].Address != tch.Email {
		t.Errorf("email recipient = %s, want %s", msg.To[0].Address, tch.Email)
	}
}

// An unresolvable recipient still gets the stored notification; only
// the email is skipped.
func Test_service_Notify_unknownRecipient(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	svc.Notify(ctx, 42, "New Daily Schedule", "You have a new daily schedule for Monday in Maple Room")

	got, err := svc.QueryByUser(ctx, 42)
	if err != nil {
		t.Fatalf("QueryByUser() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("QueryByUser() returned %d notifications, want 1", len(got))
	}
	if len(emailsvc.SentMessages) != 0 {
		t.Errorf("sent %d emails, want 0", len(emailsvc.SentMessages))
	}
}

func Test_service_MarkRead(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	svc.Notify(ctx, 7, "New Daily Schedule", "You have a new daily schedule for Monday in Maple Room")
	got, err := svc.QueryByUser(ctx, 7)
	if err != nil || len(got) != 1 {
		t.Fatalf("QueryByUser() = %v, %v", got, err)
	}

	if err = svc.MarkRead(ctx, got[0].ID); err != nil {
		t.Fatalf("MarkRead() error = %v", err)
	}
	got, _ = svc.QueryByUser(ctx, 7)
	if !got[0].Read {
		t.Error("notification not marked read")
	}

	if err = svc.MarkRead(ctx, uuid.New()); err != notify.ErrNotFound {
		t.Errorf("MarkRead() unknown id error = %v, want %v", err, notify.ErrNotFound)
	}
}

func Test_service_Delete(t *testing.T) {
	svc, _, _ := setup(t)
	ctx := context.Background()

	svc.Notify(ctx, 7, "New Daily Schedule", "You have a new daily schedule for Monday in Maple Room")
	got, _ := svc.QueryByUser(ctx, 7)
	if len(got) != 1 {
		t.Fatalf("QueryByUser() returned %d notifications, want 1", len(got))
	}

	if err := svc.Delete(ctx, got[0].ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got, _ = svc.QueryByUser(ctx, 7); len(got) != 0 {
		t.Errorf("QueryByUser() after delete = %d notifications, want 0", len(got))
	}

	if err := svc.Delete(ctx, uuid.New()); err != notify.ErrNotFound {
		t.Errorf("Delete() unknown id error = %v, want %v", err, notify.ErrNotFound)
	}
}
