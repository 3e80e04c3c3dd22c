package campus

import "time"

type Campus struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Nickname  string    `json:"nickname"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type NewCampus struct {
	Name     string `json:"name" validate:"required"`
	Nickname string `json:"nickname"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

type UpdateCampus struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}
