package class

import (
	"github.com/casitakids/backend/core"
)

// Program is the age group a class teaches.
type Program string

const (
	ProgramToddler Program = "TODDLER"
	ProgramPrimary Program = "PRIMARY"
)

// Class is the unit students and teachers attach to. Each class serves
// exactly one track: a regular "enrolled" class, a before-school care
// group or an after-school care group.
type Class struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	MaxCapacity int        `json:"max_capacity"`
	Program     Program    `json:"program"`
	Track       core.Track `json:"track"`
	CampusID    int        `json:"campus_id"`
}

type NewClass struct {
	Name        string `json:"name" validate:"required"`
	MaxCapacity int    `json:"max_capacity" validate:"required,min=1"`
	Program     string `json:"program" validate:"required,oneof=TODDLER PRIMARY"`
	Track       string `json:"track" validate:"required,track"`
	CampusID    int    `json:"campus_id" validate:"required"`
}

type UpdateClass struct {
	Name        string `json:"name"`
	MaxCapacity int    `json:"max_capacity" validate:"omitempty,min=1"`
}
