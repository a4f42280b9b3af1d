package reports

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/validity-events/backend/pkg/response"
)

// EventSummary aggregates attendance figures for a single event.
type EventSummary struct {
	EventID        uuid.UUID `json:"event_id"`
	TotalGuests    int       `json:"total_guests"`
	CheckedIn      int       `json:"checked_in"`
	BadgesPrinted  int       `json:"badges_printed"`
	SelfRegistered int       `json:"self_registered"`
	OnSite         int       `json:"on_site"`
}

// Repository computes report aggregates.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a reports repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EventSummary returns attendance aggregates for one event.
func (r *Repository) EventSummary(ctx context.Context, eventID uuid.UUID) (*EventSummary, error) {
	const q = `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE check_in_time IS NOT NULL),
			COUNT(*) FILTER (WHERE badge_printed),
			COUNT(*) FILTER (WHERE registration_type = 'self'),
			COUNT(*) FILTER (WHERE registration_type = 'on-site')
		FROM guests WHERE event_id = $1`
	s := &EventSummary{EventID: eventID}
	err := r.pool.QueryRow(ctx, q, eventID).
		Scan(&s.TotalGuests, &s.CheckedIn, &s.BadgesPrinted, &s.SelfRegistered, &s.OnSite)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Handler serves report endpoints.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a reports handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// EventSummary handles GET /api/events/:id/report.
func (h *Handler) EventSummary(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	summary, err := h.repo.EventSummary(c.Request.Context(), eventID)
	if err != nil {
		h.logger.Error("failed to build event report", zap.Error(err), zap.String("event_id", eventID.String()))
		response.Internal(c, "failed to build event report")
		return
	}
	response.OK(c, summary)
}
