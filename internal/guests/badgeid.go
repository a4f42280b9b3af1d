package guests

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewBadgeID derives a badge id from the event and registration time. The
// prefix is the first 8 hex characters of the event UUID, the suffix the
// registration timestamp in milliseconds, so ids sort by registration order
// within an event.
func NewBadgeID(eventID uuid.UUID, now time.Time) string {
	return eventID.String()[:8] + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}
