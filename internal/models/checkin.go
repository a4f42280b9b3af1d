package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckIn is one check-in record for a guest at an event.
type CheckIn struct {
	ID          uuid.UUID  `json:"id"`
	GuestID     uuid.UUID  `json:"guest_id"`
	EventID     uuid.UUID  `json:"event_id"`
	CheckInTime time.Time  `json:"check_in_time"`
	CheckInBy   *uuid.UUID `json:"check_in_by,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}
