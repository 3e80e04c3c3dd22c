package teacher

import "time"

// Teacher assignment carries no date window: a teacher is always
// "active now" for every class in their class set.
type Teacher struct {
	ID        int       `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CampusID  *int      `json:"campus_id"`
	ClassIDs  []int     `json:"class_ids"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

func (t Teacher) FullName() string { return t.FirstName + " " + t.LastName }

func (t Teacher) HasClass(id int) bool {
	for _, v := range t.ClassIDs {
		if v == id {
			return true
		}
	}
	return false
}

type NewTeacher struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone"`
	CampusID  *int   `json:"campus_id"`
	ClassIDs  []int  `json:"class_ids"`
}

type UpdateTeacher struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	CampusID  *int   `json:"campus_id"`
	ClassIDs  []int  `json:"class_ids"`
}
