package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BadgeTemplate is a named badge layout saved by an admin.
// Layout holds the serialized badge.Layout (elements, card size, theme).
type BadgeTemplate struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Layout    json.RawMessage `json:"layout"`
	CreatedBy *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
