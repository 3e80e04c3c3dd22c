package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strconv"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/class"
	"github.com/casitakids/backend/core/schedule"
	"github.com/casitakids/backend/core/student"
	logsvc "github.com/casitakids/backend/services/logger"
	dummydb "github.com/casitakids/backend/storage/database/dummy"
)

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func setup(t *testing.T) (*commandLine, student.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}

	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	clock := core.FixedClock{T: time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)}

	classRepo := dummydb.NewClassRepository(db)
	studentRepo := dummydb.NewStudentRepository(db)
	scheduleRepo := dummydb.NewScheduleRepository(db)

	classSvc := class.NewService(classRepo)
	syncer := schedule.NewSynchronizer(scheduleRepo, classRepo, clock, logger)

	cli := &commandLine{
		db:         &sqlx.DB{},
		studentSvc: student.NewService(studentRepo, classSvc, syncer, clock, logger),
	}
	return cli, studentRepo
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	gooseRunFunc = func(ctx context.Context, command string, db *sql.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s requires a VERSION argument", command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create requires a NAME argument")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to requires a VERSION argument"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to requires a VERSION argument"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create requires a NAME argument"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "notification", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_sweep(t *testing.T) {
	cli, studentRepo := setup(t)
	ctx := context.Background()

	// due today (2024-03-04 per the fixed clock)
	due := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	st, err := studentRepo.CreateStudent(ctx, student.Student{
		FirstName:              "Nora",
		LastName:               "Shields",
		DateOfBirth:            time.Date(2020, time.June, 1, 0, 0, 0, 0, time.UTC),
		DaysEnrolled:           core.NewWeekdaySet(core.Monday, core.Tuesday),
		TransitionStartDate:    &due,
		TransitionDaysEnrolled: core.NewWeekdaySet(core.Monday, core.Wednesday, core.Friday),
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed, %v", err)
	}

	if err = cli.run([]string{"admin", "sweep"}); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}

	promoted, err := studentRepo.GetStudentByID(ctx, st.ID)
	if err != nil {
		t.Fatalf("GetStudentByID() failed, %v", err)
	}
	if promoted.TransitionStartDate != nil {
		t.Error("transition start date not cleared after sweep")
	}
	if want := core.NewWeekdaySet(core.Monday, core.Wednesday, core.Friday); promoted.DaysEnrolled != want {
		t.Errorf("DaysEnrolled = %v, want %v", promoted.DaysEnrolled, want)
	}

	// rerun is a no-op
	if err = cli.run([]string{"admin", "sweep"}); err != nil {
		t.Fatalf("cli.run() rerun error = %v", err)
	}
}
