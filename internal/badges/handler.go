package badges

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/validity-events/backend/internal/artifact"
	"github.com/validity-events/backend/internal/badge"
	"github.com/validity-events/backend/internal/middleware"
	"github.com/validity-events/backend/internal/models"
	"github.com/validity-events/backend/internal/raster"
	"github.com/validity-events/backend/internal/token"
	"github.com/validity-events/backend/pkg/queue"
	"github.com/validity-events/backend/pkg/response"
	"github.com/validity-events/backend/pkg/storage"
)

// GuestSource is the guest access the badge endpoints need.
type GuestSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Guest, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Guest, error)
	MarkBadgePrinted(ctx context.Context, id uuid.UUID) error
}

// EventSource is the event access the badge endpoints need.
type EventSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// TemplateStore is the badge template access the endpoints need.
type TemplateStore interface {
	Create(ctx context.Context, t *models.BadgeTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BadgeTemplate, error)
	List(ctx context.Context) ([]models.BadgeTemplate, error)
	Update(ctx context.Context, t *models.BadgeTemplate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Enqueuer submits bulk badge generation jobs.
type Enqueuer interface {
	EnqueueBadgeBatch(ctx context.Context, payload queue.BadgeBatchPayload) error
}

// Presigner issues temporary download URLs for stored artifacts.
type Presigner interface {
	PresignDownloadURL(ctx context.Context, key string) (string, error)
}

// Broadcaster publishes realtime events to connected clients of an event room.
type Broadcaster interface {
	BroadcastToEvent(eventID, eventType string, payload any)
}

// Handler serves badge rendering, token, confirmation document and bulk
// generation endpoints.
type Handler struct {
	guests      GuestSource
	events      EventSource
	templates   TemplateStore
	compositor  *badge.Compositor
	rasterizer  raster.Rasterizer
	queue       Enqueuer
	batches     *BatchTracker
	presigner   Presigner
	broadcaster Broadcaster
	theme       badge.Theme
	logger      *zap.Logger
}

// HandlerConfig collects the handler's dependencies.
type HandlerConfig struct {
	Guests      GuestSource
	Events      EventSource
	Templates   TemplateStore
	Compositor  *badge.Compositor
	Rasterizer  raster.Rasterizer
	Queue       Enqueuer
	Batches     *BatchTracker
	Presigner   Presigner
	Broadcaster Broadcaster
	Theme       badge.Theme
	Logger      *zap.Logger
}

// NewHandler creates a badges handler.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		guests:      cfg.Guests,
		events:      cfg.Events,
		templates:   cfg.Templates,
		compositor:  cfg.Compositor,
		rasterizer:  cfg.Rasterizer,
		queue:       cfg.Queue,
		batches:     cfg.Batches,
		presigner:   cfg.Presigner,
		broadcaster: cfg.Broadcaster,
		theme:       cfg.Theme,
		logger:      logger,
	}
}

// guestAndEvent loads the guest of the :id param and its event.
func (h *Handler) guestAndEvent(c *gin.Context) (*models.Guest, *models.Event, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid guest id")
		return nil, nil, false
	}
	guest, err := h.guests.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "guest not found")
		return nil, nil, false
	}
	event, err := h.events.GetByID(c.Request.Context(), guest.EventID)
	if err != nil {
		response.NotFound(c, "event not found")
		return nil, nil, false
	}
	return guest, event, true
}

// layoutFor resolves the badge layout: the template named by the template_id
// query parameter, or an empty layout that falls back to the default.
func (h *Handler) layoutFor(c *gin.Context) (badge.Layout, error) {
	layout := badge.Layout{Theme: h.theme}
	raw := c.Query("template_id")
	if raw == "" {
		return layout, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return layout, fmt.Errorf("invalid template id")
	}
	tpl, err := h.templates.GetByID(c.Request.Context(), id)
	if err != nil {
		return layout, fmt.Errorf("template not found")
	}
	if err := json.Unmarshal(tpl.Layout, &layout); err != nil {
		return layout, fmt.Errorf("corrupt template layout")
	}
	if layout.Theme == (badge.Theme{}) {
		layout.Theme = h.theme
	}
	return layout, nil
}

func badgeData(guest *models.Guest, event *models.Event) badge.Data {
	d := badge.Data{
		GuestID:   guest.ID.String(),
		BadgeID:   guest.BadgeID,
		FullName:  guest.FullName(),
		EventName: event.Name,
	}
	if guest.Company != nil {
		d.Company = *guest.Company
	}
	if guest.JobTitle != nil {
		d.JobTitle = *guest.JobTitle
	}
	return d
}

// BadgeSVG handles GET /api/guests/:id/badge.svg.
func (h *Handler) BadgeSVG(c *gin.Context) {
	guest, event, ok := h.guestAndEvent(c)
	if !ok {
		return
	}
	layout, err := h.layoutFor(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	markup, err := h.compositor.RenderBadge(badgeData(guest, event), layout)
	if err != nil {
		h.logger.Error("failed to render badge", zap.Error(err), zap.String("guest_id", guest.ID.String()))
		response.Internal(c, "failed to render badge")
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", []byte(markup))
}

// BadgePNG handles GET /api/guests/:id/badge.png. The SVG card is rasterized
// server side for clients that cannot consume SVG.
func (h *Handler) BadgePNG(c *gin.Context) {
	guest, event, ok := h.guestAndEvent(c)
	if !ok {
		return
	}
	layout, err := h.layoutFor(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	markup, err := h.compositor.RenderBadge(badgeData(guest, event), layout)
	if err != nil {
		response.Internal(c, "failed to render badge")
		return
	}
	img, err := h.rasterizer.Rasterize(c.Request.Context(), markup)
	if err != nil {
		h.logger.Error("failed to rasterize badge", zap.Error(err), zap.String("guest_id", guest.ID.String()))
		response.Internal(c, "failed to rasterize badge")
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

// QRCodePNG handles GET /api/guests/:id/qr.png.
func (h *Handler) QRCodePNG(c *gin.Context) {
	guest, _, ok := h.guestAndEvent(c)
	if !ok {
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))
	if size < 64 || size > 1024 {
		size = 256
	}
	img, err := token.EncodeQRPNG(guest.BadgeID, size)
	if err != nil {
		response.Internal(c, "failed to encode qr code")
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

// BarcodeSVG handles GET /api/guests/:id/barcode.svg.
func (h *Handler) BarcodeSVG(c *gin.Context) {
	guest, _, ok := h.guestAndEvent(c)
	if !ok {
		return
	}
	markup, err := token.EncodeLinearSVG(guest.BadgeID, token.DefaultLinearOptions())
	if err != nil {
		response.Internal(c, "failed to encode barcode")
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", []byte(markup))
}

// Code128PNG handles GET /api/guests/:id/barcode.png. Unlike the SVG
// rendering this output decodes on real scanner hardware.
func (h *Handler) Code128PNG(c *gin.Context) {
	guest, _, ok := h.guestAndEvent(c)
	if !ok {
		return
	}
	img, err := token.EncodeCode128PNG(guest.BadgeID, 400, 100)
	if err != nil {
		response.Internal(c, "failed to encode barcode")
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

// ConfirmationPDF handles GET /api/guests/:id/confirmation.pdf. Rasterization
// failures degrade to the document's textual token section; assembly failures
// return an error asking the client to retry.
func (h *Handler) ConfirmationPDF(c *gin.Context) {
	guest, event, ok := h.guestAndEvent(c)
	if !ok {
		return
	}
	data := confirmationData(guest, event)

	if markup, err := token.EncodeLinearSVG(guest.BadgeID, token.DefaultLinearOptions()); err == nil {
		img, rerr := h.rasterizer.Rasterize(c.Request.Context(), markup)
		if rerr != nil {
			h.logger.Warn("token rasterization failed, using textual fallback",
				zap.Error(rerr), zap.String("badge_id", guest.BadgeID))
		} else {
			data.Raster = img
		}
	}

	doc, err := artifact.AssembleConfirmation(data)
	if err != nil {
		var aerr *artifact.AssemblyError
		if errors.As(err, &aerr) {
			h.logger.Error("confirmation assembly failed", zap.Error(err), zap.String("badge_id", guest.BadgeID))
		}
		response.Internal(c, "document generation failed, please retry")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+data.Filename()+`"`)
	c.Data(http.StatusOK, "application/pdf", doc)
}

func confirmationData(guest *models.Guest, event *models.Event) artifact.ConfirmationData {
	d := artifact.ConfirmationData{
		GuestID:   guest.ID.String(),
		BadgeID:   guest.BadgeID,
		EventName: event.Name,
		FirstName: guest.FirstName,
		LastName:  guest.LastName,
		Email:     guest.Email,
		Phone:     guest.Phone,
	}
	if guest.Company != nil {
		d.Company = *guest.Company
	}
	if guest.JobTitle != nil {
		d.JobTitle = *guest.JobTitle
	}
	return d
}

// PrintBadge handles POST /api/guests/:id/badge/print. The guest is flagged
// as printed only after the print action succeeded.
func (h *Handler) PrintBadge(c *gin.Context) {
	guest, event, ok := h.guestAndEvent(c)
	if !ok {
		return
	}
	layout, err := h.layoutFor(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	err = h.compositor.PrintBadge(ctx, badgeData(guest, event), layout, func() {
		if err := h.guests.MarkBadgePrinted(ctx, guest.ID); err != nil {
			h.logger.Error("failed to flag badge as printed", zap.Error(err), zap.String("guest_id", guest.ID.String()))
			return
		}
		guest.BadgePrinted = true
		if h.broadcaster != nil {
			h.broadcaster.BroadcastToEvent(guest.EventID.String(), "badge_printed", gin.H{
				"guest_id": guest.ID,
				"badge_id": guest.BadgeID,
			})
		}
	})
	if err != nil {
		h.logger.Error("failed to print badge", zap.Error(err), zap.String("guest_id", guest.ID.String()))
		response.Internal(c, "failed to print badge")
		return
	}
	response.OK(c, guest)
}

// TemplateRequest is the payload for creating or updating a badge template.
type TemplateRequest struct {
	Name   string          `json:"name" binding:"required"`
	Layout json.RawMessage `json:"layout" binding:"required"`
}

func validLayout(raw json.RawMessage) error {
	var layout badge.Layout
	if err := json.Unmarshal(raw, &layout); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}
	for _, el := range layout.Elements {
		switch el.Type {
		case badge.ElementText, badge.ElementLogo, badge.ElementQRCode:
		default:
			return fmt.Errorf("invalid layout: unknown element type %q", el.Type)
		}
	}
	return nil
}

// CreateTemplate handles POST /api/badge-templates.
func (h *Handler) CreateTemplate(c *gin.Context) {
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := validLayout(req.Layout); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	tpl := &models.BadgeTemplate{Name: req.Name, Layout: req.Layout}
	if userID, ok := c.Get(middleware.ContextUserID); ok {
		id := userID.(uuid.UUID)
		tpl.CreatedBy = &id
	}
	if err := h.templates.Create(c.Request.Context(), tpl); err != nil {
		h.logger.Error("failed to create template", zap.Error(err))
		response.Internal(c, "failed to create template")
		return
	}
	response.Created(c, tpl)
}

// ListTemplates handles GET /api/badge-templates.
func (h *Handler) ListTemplates(c *gin.Context) {
	list, err := h.templates.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list templates")
		return
	}
	response.OK(c, list)
}

// GetTemplate handles GET /api/badge-templates/:id.
func (h *Handler) GetTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return
	}
	tpl, err := h.templates.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "template not found")
		return
	}
	response.OK(c, tpl)
}

// UpdateTemplate handles PUT /api/badge-templates/:id.
func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return
	}
	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := validLayout(req.Layout); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	tpl := &models.BadgeTemplate{ID: id, Name: req.Name, Layout: req.Layout}
	if err := h.templates.Update(c.Request.Context(), tpl); err != nil {
		response.NotFound(c, "template not found")
		return
	}
	response.OK(c, tpl)
}

// DeleteTemplate handles DELETE /api/badge-templates/:id.
func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template id")
		return
	}
	if err := h.templates.Delete(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to delete template")
		return
	}
	response.NoContent(c)
}

// BatchRequest is the payload for a bulk badge generation job. An empty
// guest_ids generates documents for every guest of the event.
type BatchRequest struct {
	GuestIDs   []uuid.UUID `json:"guest_ids"`
	TemplateID *uuid.UUID  `json:"template_id"`
}

// EnqueueBatch handles POST /api/events/:id/badges/batch.
func (h *Handler) EnqueueBatch(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()

	if _, err := h.events.GetByID(ctx, eventID); err != nil {
		response.NotFound(c, "event not found")
		return
	}
	guestIDs := req.GuestIDs
	if len(guestIDs) == 0 {
		all, err := h.guests.ListByEvent(ctx, eventID)
		if err != nil {
			response.Internal(c, "failed to list guests")
			return
		}
		for _, g := range all {
			guestIDs = append(guestIDs, g.ID)
		}
	}
	if len(guestIDs) == 0 {
		response.BadRequest(c, "event has no guests")
		return
	}

	batchID := uuid.New()
	if err := h.batches.Init(ctx, batchID, eventID, len(guestIDs)); err != nil {
		h.logger.Error("failed to init batch status", zap.Error(err))
		response.Internal(c, "failed to queue batch")
		return
	}
	payload := queue.BadgeBatchPayload{
		BatchID:    batchID,
		EventID:    eventID,
		GuestIDs:   guestIDs,
		TemplateID: req.TemplateID,
	}
	if err := h.queue.EnqueueBadgeBatch(ctx, payload); err != nil {
		h.logger.Error("failed to enqueue batch", zap.Error(err))
		response.Internal(c, "failed to queue batch")
		return
	}

	h.logger.Info("badge batch queued",
		zap.String("batch_id", batchID.String()),
		zap.String("event_id", eventID.String()),
		zap.Int("guests", len(guestIDs)))
	response.Created(c, gin.H{"batch_id": batchID, "total": len(guestIDs), "status": BatchQueued})
}

// batchArtifactView is BatchArtifact plus a temporary download URL.
type batchArtifactView struct {
	BatchArtifact
	URL string `json:"url,omitempty"`
}

// BatchStatus handles GET /api/badges/batches/:id. Finished artifacts are
// returned with presigned download URLs.
func (h *Handler) BatchStatus(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid batch id")
		return
	}
	ctx := c.Request.Context()
	status, err := h.batches.Get(ctx, batchID)
	if err != nil {
		response.NotFound(c, "batch not found")
		return
	}

	artifacts := make([]batchArtifactView, 0, len(status.Artifacts))
	for _, a := range status.Artifacts {
		view := batchArtifactView{BatchArtifact: a}
		if h.presigner != nil {
			url, perr := h.presigner.PresignDownloadURL(ctx, a.Key)
			if perr != nil {
				h.logger.Warn("failed to presign artifact url", zap.Error(perr), zap.String("key", a.Key))
			} else {
				view.URL = url
			}
		}
		artifacts = append(artifacts, view)
	}
	response.OK(c, gin.H{
		"batch_id":   status.BatchID,
		"event_id":   status.EventID,
		"status":     status.Status,
		"total":      status.Total,
		"completed":  status.Completed,
		"failed":     status.Failed,
		"artifacts":  artifacts,
		"created_at": status.CreatedAt,
		"updated_at": status.UpdatedAt,
	})
}

var (
	_ Presigner = (*storage.S3)(nil)
	_ Enqueuer  = (*queue.Queue)(nil)
)
