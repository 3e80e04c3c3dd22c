package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/class"
	"github.com/casitakids/backend/core/schedule"
	"github.com/casitakids/backend/core/student"
	logsvc "github.com/casitakids/backend/services/logger"
	"github.com/casitakids/backend/storage/database"
	pgrepos "github.com/casitakids/backend/storage/database/postgres"
)

func main() {
	defer os.Exit(0)

	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewStdLogger(std)

	conf, err := core.NewConfig()
	if err != nil {
		std.Fatal(err)
	}

	// set up DB
	db, err := database.Open(conf)
	errAndDie(std, err)
	defer func() { _ = db.Close() }()
	errAndDie(std, db.Ping())

	// start CLI
	cli := commandLine{
		conf:       conf,
		db:         db,
		studentSvc: newStudentService(db, conf, logger),
	}
	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			std.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func newStudentService(db *sqlx.DB, conf *core.Config, logger core.Logger) student.Service {
	clock := core.NewClock()

	classRepo := pgrepos.NewClassRepository(db)
	studentRepo := pgrepos.NewStudentRepository(db)
	scheduleRepo := pgrepos.NewScheduleRepository(db)

	classSvc := class.NewService(classRepo)
	syncer := schedule.NewSynchronizer(scheduleRepo, classRepo, clock, logger)
	return student.NewService(studentRepo, classSvc, syncer, clock, logger)
}

func errAndDie(std *log.Logger, err error) {
	if err != nil {
		std.Fatal(err)
	}
}
