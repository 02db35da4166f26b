package models

import (
	"encoding/json"
	"time"
)

// Order is an example record read by the backend over its database connection.
type Order struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`

	// CreatedAtText keeps a received created_at that could not be parsed as a time.
	CreatedAtText string `json:"-"`
}

// MarshalJSON writes CreatedAtText as created_at when CreatedAt is unset, so a
// date that could not be parsed is passed on as received.
func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	if o.CreatedAt.IsZero() && o.CreatedAtText != "" {
		return json.Marshal(struct {
			plain
			CreatedAt string `json:"created_at"`
		}{plain: plain(o), CreatedAt: o.CreatedAtText})
	}
	return json.Marshal(plain(o))
}

// Order status values stored in the demo database.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusFailed     = "failed"
)
