package checkin

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/validity-events/backend/internal/guests"
	"github.com/validity-events/backend/internal/middleware"
	"github.com/validity-events/backend/internal/models"
	"github.com/validity-events/backend/pkg/response"
)

// Broadcaster publishes realtime events to connected clients of an event room.
type Broadcaster interface {
	BroadcastToEvent(eventID, eventType string, payload any)
}

// Handler handles check-in endpoints.
type Handler struct {
	repo        *Repository
	guests      *guests.Repository
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewHandler creates a check-in handler.
func NewHandler(repo *Repository, guestRepo *guests.Repository, broadcaster Broadcaster, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, guests: guestRepo, broadcaster: broadcaster, logger: logger}
}

// CheckInRequest is the payload for checking in a guest. Code is a badge id
// as scanned from the QR token, or a guest UUID as a fallback.
type CheckInRequest struct {
	Code     string  `json:"code" binding:"required"`
	Location *string `json:"location"`
	Notes    *string `json:"notes"`
}

// CheckIn handles POST /api/checkin.
func (h *Handler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()

	guest, err := h.guests.GetByBadgeID(ctx, req.Code)
	if err != nil {
		if id, parseErr := uuid.Parse(req.Code); parseErr == nil {
			guest, err = h.guests.GetByID(ctx, id)
		}
		if err != nil {
			response.NotFound(c, "no guest found for this code")
			return
		}
	}

	first, err := h.guests.SetCheckInTime(ctx, guest.ID)
	if err != nil {
		h.logger.Error("failed to check in guest", zap.Error(err), zap.String("guest_id", guest.ID.String()))
		response.Internal(c, "failed to check in guest")
		return
	}
	if !first {
		response.Conflict(c, "guest already checked in")
		return
	}

	ci := &models.CheckIn{GuestID: guest.ID, EventID: guest.EventID, Location: req.Location, Notes: req.Notes}
	if staffID, ok := c.Get(middleware.ContextUserID); ok {
		id := staffID.(uuid.UUID)
		ci.CheckInBy = &id
	}
	if err := h.repo.Create(ctx, ci); err != nil {
		h.logger.Error("failed to record check-in", zap.Error(err), zap.String("guest_id", guest.ID.String()))
		response.Internal(c, "failed to record check-in")
		return
	}

	guest.CheckInTime = &ci.CheckInTime
	if h.broadcaster != nil {
		h.broadcaster.BroadcastToEvent(guest.EventID.String(), "guest_checked_in", gin.H{
			"guest_id":      guest.ID,
			"badge_id":      guest.BadgeID,
			"full_name":     guest.FullName(),
			"check_in_time": ci.CheckInTime,
		})
	}

	h.logger.Info("guest checked in",
		zap.String("guest_id", guest.ID.String()),
		zap.String("badge_id", guest.BadgeID))
	response.OK(c, gin.H{"guest": guest, "check_in": ci})
}

// List handles GET /api/events/:id/checkins.
func (h *Handler) List(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	list, err := h.repo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		h.logger.Error("failed to list check-ins", zap.Error(err))
		response.Internal(c, "failed to list check-ins")
		return
	}
	response.OK(c, list)
}
