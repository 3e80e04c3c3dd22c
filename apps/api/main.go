package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/casitakids/backend/apps/api/echo"
	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/campus"
	"github.com/casitakids/backend/core/class"
	"github.com/casitakids/backend/core/notify"
	"github.com/casitakids/backend/core/schedule"
	"github.com/casitakids/backend/core/student"
	"github.com/casitakids/backend/core/teacher"
	emailsvc "github.com/casitakids/backend/services/email"
	logsvc "github.com/casitakids/backend/services/logger"
	"github.com/casitakids/backend/storage/cache"
	"github.com/casitakids/backend/storage/database"
	pgrepos "github.com/casitakids/backend/storage/database/postgres"
)

const scheduleCacheTTL = 60 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	conf, err := core.NewConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	clock := core.NewClock()

	campusRepo := pgrepos.NewCampusRepository(db)
	classRepo := pgrepos.NewClassRepository(db)
	teacherRepo := pgrepos.NewTeacherRepository(db)
	studentRepo := pgrepos.NewStudentRepository(db)
	scheduleRepo := pgrepos.NewScheduleRepository(db)
	notificationRepo := pgrepos.NewNotificationRepository(db)

	campusSvc := campus.NewService(campusRepo, clock)
	classSvc := class.NewService(classRepo)

	syncer := schedule.NewSynchronizer(scheduleRepo, classRepo, clock, logger)
	teacherSvc := teacher.NewService(teacherRepo, classSvc, syncer, clock, logger)
	studentSvc := student.NewService(studentRepo, classSvc, syncer, clock, logger)

	notifySvc := notify.NewService(notificationRepo, teacherRepo, mailSvc, clock, logger)
	scheduleSvc := schedule.NewService(
		scheduleRepo, campusSvc, classSvc, studentRepo, teacherRepo, notifySvc, clock, logger)

	scheduleCache := cache.New(conf, scheduleCacheTTL)
	defer func() { _ = scheduleCache.Close() }()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start Transition Sweep
	//
	// Promotes due transition windows and patches future schedules.

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go runSweep(sweepCtx, conf.SweepInterval, studentSvc, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugAddress(), http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:        conf,
		Logger:      logger,
		Validate:    validate,
		Translator:  translator,
		CampusSvc:   campusSvc,
		ClassSvc:    classSvc,
		TeacherSvc:  teacherSvc,
		StudentSvc:  studentSvc,
		ScheduleSvc: scheduleSvc,
		NotifySvc:   notifySvc,
		Cache:       scheduleCache,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		stopSweep()

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// runSweep runs the transition sweep on a fixed interval until ctx is
// canceled.
func runSweep(ctx context.Context, interval time.Duration, svc student.Service, logger core.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res := svc.RunTransitionSweep(ctx)
			if len(res.Succeeded) > 0 || len(res.Failed) > 0 {
				logger.Info(fmt.Sprintf("transition sweep: %d promoted, %d failed",
					len(res.Succeeded), len(res.Failed)))
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
