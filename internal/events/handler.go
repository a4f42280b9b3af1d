package events

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/validity-events/backend/internal/models"
	"github.com/validity-events/backend/pkg/response"
)

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description *string   `json:"description"`
	Location    *string   `json:"location"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an events handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Create handles POST /events.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !req.EndDate.After(req.StartDate) {
		response.BadRequest(c, "end_date must be after start_date")
		return
	}
	e := &models.Event{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, e)
}

// List handles GET /events.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /events/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// Update handles PUT /events/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	e.Name = req.Name
	e.Description = req.Description
	e.Location = req.Location
	e.StartDate = req.StartDate
	e.EndDate = req.EndDate
	if err := h.repo.Update(c.Request.Context(), e); err != nil {
		response.Internal(c, "failed to update event")
		return
	}
	response.OK(c, e)
}

// Delete handles DELETE /events/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}
