package notify

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an advisory message for one user. Notifications are
// best-effort: producing one never fails the operation that raised it.
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    int       `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
