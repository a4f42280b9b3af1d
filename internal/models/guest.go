package models

import (
	"time"

	"github.com/google/uuid"
)

// Registration types.
const (
	RegistrationSelf   = "self"
	RegistrationOnSite = "on-site"
)

// Guest is a registered attendee of an event.
type Guest struct {
	ID               uuid.UUID  `json:"id"`
	EventID          uuid.UUID  `json:"event_id"`
	FirstName        string     `json:"first_name"`
	LastName         string     `json:"last_name"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	Company          *string    `json:"company,omitempty"`
	JobTitle         *string    `json:"job_title,omitempty"`
	RegistrationType string     `json:"registration_type"` // "self" or "on-site"
	RegisteredBy     *uuid.UUID `json:"registered_by,omitempty"`
	BadgePrinted     bool       `json:"badge_printed"`
	BadgeID          string     `json:"badge_id"`
	CheckInTime      *time.Time `json:"check_in_time,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// FullName returns "First Last" for display on badges and documents.
func (g Guest) FullName() string {
	return g.FirstName + " " + g.LastName
}
