package models

import "time"

// Activity is one append-only entry of a user's activity log.
type Activity struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"createdAt"`
}
