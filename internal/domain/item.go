package domain

import "time"

// Item is a user-owned record exposed through the items API.
type Item struct {
	ID          int64
	Title       string
	Description string
	UserID      int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
