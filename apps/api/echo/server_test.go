package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/casitakids/backend/core"
	"github.com/casitakids/backend/core/campus"
	"github.com/casitakids/backend/core/class"
	"github.com/casitakids/backend/core/notify"
	"github.com/casitakids/backend/core/schedule"
	"github.com/casitakids/backend/core/student"
	"github.com/casitakids/backend/core/teacher"
	emailsvc "github.com/casitakids/backend/services/email"
	logsvc "github.com/casitakids/backend/services/logger"
	dummydb "github.com/casitakids/backend/storage/database/dummy"
)

type testApp struct {
	server Server
	conf   *core.Config

	campusRepo   campus.Repository
	classRepo    class.Repository
	teacherRepo  teacher.Repository
	studentRepo  student.Repository
	scheduleRepo schedule.Repository

	scheduleSvc schedule.Service
	notifySvc   notify.Service
}

func setupServer(t *testing.T) *testApp {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}

	conf := &core.Config{
		TestMode:           true,
		AppName:            "Casita",
		SecretKey:          "t35t-k3y",
		DefaultFromEmail:   "noreply@casita.test",
		JWTExpirationDelta: time.Hour,
	}

	logger := logsvc.NewStdLogger(log.New(io.Discard, "", 0))
	clock := core.FixedClock{T: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)}
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)

	app := &testApp{
		conf:         conf,
		campusRepo:   dummydb.NewCampusRepository(db),
		classRepo:    dummydb.NewClassRepository(db),
		teacherRepo:  dummydb.NewTeacherRepository(db),
		studentRepo:  dummydb.NewStudentRepository(db),
		scheduleRepo: dummydb.NewScheduleRepository(db),
	}
	notificationRepo := dummydb.NewNotificationRepository(db)

	classSvc := class.NewService(app.classRepo)
	syncer := schedule.NewSynchronizer(app.scheduleRepo, app.classRepo, clock, logger)
	app.notifySvc = notify.NewService(notificationRepo, app.teacherRepo, mailSvc, clock, logger)
	app.scheduleSvc = schedule.NewService(
		app.scheduleRepo,
		campus.NewService(app.campusRepo, clock),
		classSvc,
		app.studentRepo,
		app.teacherRepo,
		app.notifySvc,
		clock,
		logger,
	)

	app.server = NewServer(ServerDeps{
		Conf:        conf,
		Logger:      logger,
		Validate:    validate,
		Translator:  translator,
		CampusSvc:   campus.NewService(app.campusRepo, clock),
		ClassSvc:    classSvc,
		TeacherSvc:  teacher.NewService(app.teacherRepo, classSvc, syncer, clock, logger),
		StudentSvc:  student.NewService(app.studentRepo, classSvc, syncer, clock, logger),
		ScheduleSvc: app.scheduleSvc,
		NotifySvc:   app.notifySvc,
	})
	return app
}

func (app *testApp) token(t *testing.T, userID int, isAdmin bool) string {
	t.Helper()
	ss, err := GenerateToken(app.conf, &Claims{
		StandardClaims: jwt.StandardClaims{Subject: strconv.Itoa(userID)},
		Name:           "Test User",
		IsAdmin:        isAdmin,
	})
	if err != nil {
		t.Fatalf("GenerateToken() failed, %v", err)
	}
	return ss
}

func (app *testApp) request(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.server.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func Test_home(t *testing.T) {
	app := setupServer(t)
	rec := app.request(http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Casita API!", rec.Body.String())
}

func Test_auth(t *testing.T) {
	app := setupServer(t)

	rec := app.request(http.MethodGet, "/v1/campuses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.request(http.MethodGet, "/v1/campuses", "not.a.token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// admin-only endpoints reject plain tokens
	rec = app.request(http.MethodPost, "/v1/campuses", app.token(t, 1, false), campus.NewCampus{Name: "Riverside"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func Test_campusApi(t *testing.T) {
	app := setupServer(t)
	admin := app.token(t, 1, true)

	rec := app.request(http.MethodPost, "/v1/campuses", admin, campus.NewCampus{Name: "Riverside"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var created campus.Campus
	jsonBody(t, rec, &created)
	assert.Equal(t, "Riverside", created.Name)

	// missing required name
	rec = app.request(http.MethodPost, "/v1/campuses", admin, campus.NewCampus{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.request(http.MethodGet, "/v1/campuses", app.token(t, 2, false), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var campuses []campus.Campus
	jsonBody(t, rec, &campuses)
	assert.Len(t, campuses, 1)

	rec = app.request(http.MethodGet, fmt.Sprintf("/v1/campuses/%d", created.ID), admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.request(http.MethodGet, "/v1/campuses/999", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.request(http.MethodGet, "/v1/campuses/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.request(http.MethodDelete, fmt.Sprintf("/v1/campuses/%d", created.ID), admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func Test_planningAndScheduleFlow(t *testing.T) {
	app := setupServer(t)
	admin := app.token(t, 1, true)
	ctx := context.Background()

	cp, err := app.campusRepo.CreateCampus(ctx, campus.Campus{Name: "Riverside"})
	if err != nil {
		t.Fatalf("CreateCampus() failed, %v", err)
	}
	cl, err := app.classRepo.CreateClass(ctx, class.Class{
		Name: "Maple Room", MaxCapacity: 12, Program: class.ProgramToddler,
		Track: core.TrackEnrolled, CampusID: cp.ID,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed, %v", err)
	}
	if _, err = app.studentRepo.CreateStudent(ctx, student.Student{
		FirstName: "Maya", LastName: "Reed",
		DaysEnrolled: core.NewWeekdaySet(core.Monday, core.Wednesday, core.Friday),
		ClassIDs:     []int{cl.ID},
	}); err != nil {
		t.Fatalf("CreateStudent() failed, %v", err)
	}

	// single week
	rec := app.request(http.MethodPost, "/v1/plannings", admin, schedule.NewPlanning{
		Year: 2024, Month: 3, Week: 2, CampusID: cp.ID, ClassID: cl.ID,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var p schedule.Planning
	jsonBody(t, rec, &p)
	assert.Equal(t, "2024-03-04", p.StartDate.Format("2006-01-02"))

	// idempotent re-create
	rec = app.request(http.MethodPost, "/v1/plannings", admin, schedule.NewPlanning{
		Year: 2024, Month: 3, Week: 2, CampusID: cp.ID, ClassID: cl.ID,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var again schedule.Planning
	jsonBody(t, rec, &again)
	assert.Equal(t, p.ID, again.ID)

	// omitted week creates the whole month
	rec = app.request(http.MethodPost, "/v1/plannings", admin, schedule.NewPlanning{
		Year: 2024, Month: 3, CampusID: cp.ID, ClassID: cl.ID,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var weeks schedule.WeeksResult
	jsonBody(t, rec, &weeks)
	assert.Len(t, weeks.Created, 5)
	assert.Len(t, weeks.Failed, 1)

	// week out of validation bounds
	rec = app.request(http.MethodPost, "/v1/plannings", admin, schedule.NewPlanning{
		Year: 2024, Month: 3, Week: 9, CampusID: cp.ID, ClassID: cl.ID,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// generate
	rec = app.request(http.MethodPost, fmt.Sprintf("/v1/schedules/generate/%d", p.ID), admin, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var genRes schedule.GenerateResult
	jsonBody(t, rec, &genRes)
	assert.Len(t, genRes.Created, 5)
	assert.Empty(t, genRes.Failed)

	// regenerate conflicts
	rec = app.request(http.MethodPost, fmt.Sprintf("/v1/schedules/generate/%d", p.ID), admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = app.request(http.MethodGet, fmt.Sprintf("/v1/plannings/%d/schedules", p.ID), admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var schedules []schedule.DailySchedule
	jsonBody(t, rec, &schedules)
	assert.Len(t, schedules, 5)

	// filter by weekday
	rec = app.request(http.MethodGet, "/v1/schedules?day=Monday", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var mondays []schedule.DailySchedule
	jsonBody(t, rec, &mondays)
	assert.Len(t, mondays, 1)

	rec = app.request(http.MethodGet, "/v1/schedules?day=Blursday", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// manual notes patch
	notes := "field trip day"
	rec = app.request(http.MethodPatch, fmt.Sprintf("/v1/schedules/%d", schedules[0].ID), admin,
		schedule.UpdateSchedule{Notes: &notes})
	assert.Equal(t, http.StatusOK, rec.Code)
	var patched schedule.DailySchedule
	jsonBody(t, rec, &patched)
	assert.Equal(t, notes, patched.Notes)

	// planning deletion cascades
	rec = app.request(http.MethodDelete, fmt.Sprintf("/v1/plannings/%d", p.ID), admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.request(http.MethodGet, fmt.Sprintf("/v1/plannings/%d/schedules", p.ID), admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var left []schedule.DailySchedule
	jsonBody(t, rec, &left)
	assert.Empty(t, left)
}

func Test_notificationApi(t *testing.T) {
	app := setupServer(t)
	ctx := context.Background()

	tch, err := app.teacherRepo.CreateTeacher(ctx, teacher.Teacher{
		FirstName: "Ada", LastName: "King", Email: "ada@casita.test",
	})
	if err != nil {
		t.Fatalf("CreateTeacher() failed, %v", err)
	}
	app.notifySvc.Notify(ctx, tch.ID, "New Daily Schedule", "You have a new daily schedule for Monday in Maple Room")

	token := app.token(t, tch.ID, false)

	rec := app.request(http.MethodGet, "/v1/notifications", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var notifications []notify.Notification
	jsonBody(t, rec, &notifications)
	assert.Len(t, notifications, 1)
	assert.False(t, notifications[0].Read)

	rec = app.request(http.MethodPost, fmt.Sprintf("/v1/notifications/%s/read", notifications[0].ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.request(http.MethodPost, "/v1/notifications/nope/read", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.request(http.MethodDelete, fmt.Sprintf("/v1/notifications/%s", notifications[0].ID), token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.request(http.MethodGet, "/v1/notifications", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	notifications = nil
	jsonBody(t, rec, &notifications)
	assert.Empty(t, notifications)
}

func Test_transitionSweepEndpoint(t *testing.T) {
	app := setupServer(t)
	admin := app.token(t, 1, true)
	ctx := context.Background()

	// due on the fixed clock's date
	due := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	st, err := app.studentRepo.CreateStudent(ctx, student.Student{
		FirstName: "Maya", LastName: "Reed",
		DaysEnrolled:           core.NewWeekdaySet(core.Monday),
		TransitionStartDate:    &due,
		TransitionDaysEnrolled: core.NewWeekdaySet(core.Tuesday),
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed, %v", err)
	}

	rec := app.request(http.MethodPost, "/v1/students/transition-sweep", app.token(t, 2, false), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.request(http.MethodPost, "/v1/students/transition-sweep", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Promoted []int `json:"promoted"`
		Failed   int   `json:"failed"`
	}
	jsonBody(t, rec, &res)
	assert.Equal(t, []int{st.ID}, res.Promoted)
	assert.Zero(t, res.Failed)
}
