package badges

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Batch states.
const (
	BatchQueued     = "queued"
	BatchProcessing = "processing"
	BatchCompleted  = "completed"
)

// batchTTL bounds how long finished batch records stay in Redis.
const batchTTL = 24 * time.Hour

// BatchArtifact is one generated confirmation document within a batch.
type BatchArtifact struct {
	GuestID uuid.UUID `json:"guest_id"`
	BadgeID string    `json:"badge_id"`
	Key     string    `json:"key"`
}

// BatchStatus is the progress record of a bulk badge generation job.
type BatchStatus struct {
	BatchID   uuid.UUID       `json:"batch_id"`
	EventID   uuid.UUID       `json:"event_id"`
	Status    string          `json:"status"`
	Total     int             `json:"total"`
	Completed int             `json:"completed"`
	Failed    int             `json:"failed"`
	Artifacts []BatchArtifact `json:"artifacts,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// BatchTracker stores batch progress in Redis so the API can report on jobs
// the worker is processing.
type BatchTracker struct {
	client *redis.Client
}

// NewBatchTracker creates a batch tracker.
func NewBatchTracker(client *redis.Client) *BatchTracker {
	return &BatchTracker{client: client}
}

func batchKey(batchID uuid.UUID) string {
	return "badge_batch:" + batchID.String()
}

// Init records a freshly queued batch.
func (t *BatchTracker) Init(ctx context.Context, batchID, eventID uuid.UUID, total int) error {
	now := time.Now()
	return t.save(ctx, &BatchStatus{
		BatchID:   batchID,
		EventID:   eventID,
		Status:    BatchQueued,
		Total:     total,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Get returns the batch status, or redis.Nil when unknown.
func (t *BatchTracker) Get(ctx context.Context, batchID uuid.UUID) (*BatchStatus, error) {
	raw, err := t.client.Get(ctx, batchKey(batchID)).Bytes()
	if err != nil {
		return nil, err
	}
	var s BatchStatus
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode batch status: %w", err)
	}
	return &s, nil
}

// MarkArtifact records one successfully generated document.
func (t *BatchTracker) MarkArtifact(ctx context.Context, batchID uuid.UUID, artifact BatchArtifact) error {
	return t.update(ctx, batchID, func(s *BatchStatus) {
		s.Status = BatchProcessing
		s.Completed++
		s.Artifacts = append(s.Artifacts, artifact)
	})
}

// MarkFailed records one guest whose document could not be generated.
func (t *BatchTracker) MarkFailed(ctx context.Context, batchID uuid.UUID) error {
	return t.update(ctx, batchID, func(s *BatchStatus) {
		s.Status = BatchProcessing
		s.Failed++
	})
}

// Finish marks a batch complete.
func (t *BatchTracker) Finish(ctx context.Context, batchID uuid.UUID) error {
	return t.update(ctx, batchID, func(s *BatchStatus) {
		s.Status = BatchCompleted
	})
}

func (t *BatchTracker) update(ctx context.Context, batchID uuid.UUID, fn func(*BatchStatus)) error {
	s, err := t.Get(ctx, batchID)
	if err != nil {
		return err
	}
	fn(s)
	return t.save(ctx, s)
}

func (t *BatchTracker) save(ctx context.Context, s *BatchStatus) error {
	s.UpdatedAt = time.Now()
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode batch status: %w", err)
	}
	return t.client.Set(ctx, batchKey(s.BatchID), raw, batchTTL).Err()
}
