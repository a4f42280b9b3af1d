package guests

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/validity-events/backend/internal/events"
	"github.com/validity-events/backend/internal/middleware"
	"github.com/validity-events/backend/internal/models"
	"github.com/validity-events/backend/pkg/response"
)

// Handler handles guest registration endpoints.
type Handler struct {
	repo   *Repository
	events *events.Repository
	logger *zap.Logger
}

// NewHandler creates a guests handler.
func NewHandler(repo *Repository, events *events.Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, events: events, logger: logger}
}

// RegisterRequest is the payload for guest registration.
type RegisterRequest struct {
	FirstName string  `json:"first_name" binding:"required"`
	LastName  string  `json:"last_name" binding:"required"`
	Email     string  `json:"email" binding:"required,email"`
	Phone     string  `json:"phone" binding:"required"`
	Company   *string `json:"company"`
	JobTitle  *string `json:"job_title"`
}

// Register handles POST /api/events/:id/register (public self-registration).
func (h *Handler) Register(c *gin.Context) {
	h.register(c, models.RegistrationSelf)
}

// RegisterOnSite handles POST /api/events/:id/guests (staff on-site registration).
func (h *Handler) RegisterOnSite(c *gin.Context) {
	h.register(c, models.RegistrationOnSite)
}

func (h *Handler) register(c *gin.Context, regType string) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	event, err := h.events.GetByID(c.Request.Context(), eventID)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}

	guest := &models.Guest{
		EventID:          event.ID,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		Company:          req.Company,
		JobTitle:         req.JobTitle,
		RegistrationType: regType,
		BadgeID:          NewBadgeID(event.ID, time.Now()),
	}
	if regType == models.RegistrationOnSite {
		if staffID, ok := c.Get(middleware.ContextUserID); ok {
			id := staffID.(uuid.UUID)
			guest.RegisteredBy = &id
		}
	}

	if err := h.repo.Create(c.Request.Context(), guest); err != nil {
		h.logger.Error("failed to register guest", zap.Error(err), zap.String("event_id", event.ID.String()))
		response.Internal(c, "failed to register guest")
		return
	}

	h.logger.Info("guest registered",
		zap.String("guest_id", guest.ID.String()),
		zap.String("badge_id", guest.BadgeID),
		zap.String("type", regType))
	response.Created(c, guest)
}

// List handles GET /api/events/:id/guests. An optional "q" query parameter
// filters by name, email or badge id.
func (h *Handler) List(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}

	var guests []models.Guest
	if q := c.Query("q"); q != "" {
		guests, err = h.repo.Search(c.Request.Context(), eventID, q)
	} else {
		guests, err = h.repo.ListByEvent(c.Request.Context(), eventID)
	}
	if err != nil {
		h.logger.Error("failed to list guests", zap.Error(err))
		response.Internal(c, "failed to list guests")
		return
	}
	response.OK(c, guests)
}

// Get handles GET /api/guests/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid guest id")
		return
	}
	guest, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "guest not found")
		return
	}
	response.OK(c, guest)
}
