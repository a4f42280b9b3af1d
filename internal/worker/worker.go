// Package worker runs the background job loop for bulk badge document
// generation.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/validity-events/backend/internal/artifact"
	"github.com/validity-events/backend/internal/badges"
	"github.com/validity-events/backend/internal/events"
	"github.com/validity-events/backend/internal/guests"
	"github.com/validity-events/backend/internal/models"
	"github.com/validity-events/backend/internal/raster"
	"github.com/validity-events/backend/internal/token"
	"github.com/validity-events/backend/pkg/queue"
	"github.com/validity-events/backend/pkg/storage"
)

// Worker dequeues badge batch jobs, generates confirmation documents and
// uploads them to object storage.
type Worker struct {
	queue      *queue.Queue
	guests     *guests.Repository
	events     *events.Repository
	batches    *badges.BatchTracker
	rasterizer raster.Rasterizer
	store      *storage.S3
	logger     *zap.Logger
}

// New creates a worker.
func New(
	q *queue.Queue,
	guestRepo *guests.Repository,
	eventRepo *events.Repository,
	batches *badges.BatchTracker,
	rasterizer raster.Rasterizer,
	store *storage.S3,
	logger *zap.Logger,
) *Worker {
	return &Worker{
		queue:      q,
		guests:     guestRepo,
		events:     eventRepo,
		batches:    batches,
		rasterizer: rasterizer,
		store:      store,
		logger:     logger,
	}
}

// Run processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started", zap.String("queue", queue.QueueBadges))
	for {
		job, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		if err := w.process(ctx, job); err != nil {
			w.logger.Error("job failed",
				zap.String("job_id", job.ID),
				zap.Int("attempt", job.Attempt),
				zap.Error(err))
			if rerr := w.queue.Retry(ctx, job); rerr != nil {
				w.logger.Error("retry failed", zap.String("job_id", job.ID), zap.Error(rerr))
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeBadgeBatch:
		var payload queue.BadgeBatchPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return w.processBadgeBatch(ctx, payload)
	default:
		return fmt.Errorf("unknown job type %q", job.Type)
	}
}

// processBadgeBatch generates a confirmation document per guest. A failing
// guest is counted and skipped so one bad record cannot stall the batch.
func (w *Worker) processBadgeBatch(ctx context.Context, payload queue.BadgeBatchPayload) error {
	event, err := w.events.GetByID(ctx, payload.EventID)
	if err != nil {
		return fmt.Errorf("load event: %w", err)
	}

	for _, guestID := range payload.GuestIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		guest, err := w.guests.GetByID(ctx, guestID)
		if err != nil {
			w.logger.Warn("guest not found, skipping",
				zap.String("guest_id", guestID.String()), zap.Error(err))
			_ = w.batches.MarkFailed(ctx, payload.BatchID)
			continue
		}

		doc, err := w.generateConfirmation(ctx, guest, event.Name)
		if err != nil {
			w.logger.Error("document generation failed",
				zap.String("guest_id", guestID.String()),
				zap.String("badge_id", guest.BadgeID),
				zap.Error(err))
			_ = w.batches.MarkFailed(ctx, payload.BatchID)
			continue
		}

		key := storage.BadgeArtifactKey(payload.EventID.String(), payload.BatchID.String(), guest.BadgeID)
		if err := w.store.Upload(ctx, key, "application/pdf", bytes.NewReader(doc)); err != nil {
			w.logger.Error("artifact upload failed",
				zap.String("key", key), zap.Error(err))
			_ = w.batches.MarkFailed(ctx, payload.BatchID)
			continue
		}

		if err := w.guests.MarkBadgePrinted(ctx, guest.ID); err != nil {
			w.logger.Warn("failed to flag badge as printed",
				zap.String("guest_id", guest.ID.String()), zap.Error(err))
		}
		_ = w.batches.MarkArtifact(ctx, payload.BatchID, badges.BatchArtifact{
			GuestID: guest.ID,
			BadgeID: guest.BadgeID,
			Key:     key,
		})
	}

	if err := w.batches.Finish(ctx, payload.BatchID); err != nil {
		w.logger.Warn("failed to finish batch status",
			zap.String("batch_id", payload.BatchID.String()), zap.Error(err))
	}
	w.logger.Info("badge batch processed",
		zap.String("batch_id", payload.BatchID.String()),
		zap.Int("guests", len(payload.GuestIDs)))
	return nil
}

// generateConfirmation runs the token, rasterization and assembly pipeline
// for one guest. Rasterization failures fall back to the document's textual
// token section.
func (w *Worker) generateConfirmation(ctx context.Context, guest *models.Guest, eventName string) ([]byte, error) {
	data := artifact.ConfirmationData{
		GuestID:   guest.ID.String(),
		BadgeID:   guest.BadgeID,
		EventName: eventName,
		FirstName: guest.FirstName,
		LastName:  guest.LastName,
		Email:     guest.Email,
		Phone:     guest.Phone,
	}
	if guest.Company != nil {
		data.Company = *guest.Company
	}
	if guest.JobTitle != nil {
		data.JobTitle = *guest.JobTitle
	}

	if markup, err := token.EncodeLinearSVG(guest.BadgeID, token.DefaultLinearOptions()); err == nil {
		if img, rerr := w.rasterizer.Rasterize(ctx, markup); rerr == nil {
			data.Raster = img
		} else {
			w.logger.Warn("token rasterization failed, using textual fallback",
				zap.String("badge_id", guest.BadgeID), zap.Error(rerr))
		}
	}
	return artifact.AssembleConfirmation(data)
}
