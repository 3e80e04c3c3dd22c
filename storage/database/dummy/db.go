package dummydb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/casitakids/backend/core/campus"
	"github.com/casitakids/backend/core/class"
	"github.com/casitakids/backend/core/notify"
	"github.com/casitakids/backend/core/schedule"
	"github.com/casitakids/backend/core/student"
	"github.com/casitakids/backend/core/teacher"
)

type (
	DB struct {
		campus       *campusTable
		class        *classTable
		teacher      *teacherTable
		student      *studentTable
		planning     *planningTable
		schedule     *scheduleTable
		notification *notificationTable
	}

	campusTable struct {
		sync.RWMutex
		seq   int
		table map[int]*campus.Campus
	}
	classTable struct {
		sync.RWMutex
		seq   int
		table map[int]*class.Class
	}
	teacherTable struct {
		sync.RWMutex
		seq   int
		table map[int]*teacher.Teacher
	}
	studentTable struct {
		sync.RWMutex
		seq   int
		table map[int]*student.Student
	}
	planningTable struct {
		sync.RWMutex
		seq   int
		table map[int]*schedule.Planning
	}
	scheduleTable struct {
		sync.RWMutex
		seq   int
		table map[int]*schedule.DailySchedule
	}
	notificationTable struct {
		sync.RWMutex
		table map[uuid.UUID]*notify.Notification
	}
)

func Open() (*DB, error) {
	db := &DB{
		campus:       &campusTable{table: make(map[int]*campus.Campus)},
		class:        &classTable{table: make(map[int]*class.Class)},
		teacher:      &teacherTable{table: make(map[int]*teacher.Teacher)},
		student:      &studentTable{table: make(map[int]*student.Student)},
		planning:     &planningTable{table: make(map[int]*schedule.Planning)},
		schedule:     &scheduleTable{table: make(map[int]*schedule.DailySchedule)},
		notification: &notificationTable{table: make(map[uuid.UUID]*notify.Notification)},
	}
	return db, nil
}
