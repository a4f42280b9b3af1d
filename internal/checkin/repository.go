package checkin

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/validity-events/backend/internal/models"
)

// Repository handles check-in audit persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a check-in repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create records a check-in entry.
func (r *Repository) Create(ctx context.Context, ci *models.CheckIn) error {
	const q = `INSERT INTO check_ins (id, guest_id, event_id, check_in_by, location, notes)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, check_in_time`
	return r.pool.QueryRow(ctx, q, ci.GuestID, ci.EventID, ci.CheckInBy, ci.Location, ci.Notes).
		Scan(&ci.ID, &ci.CheckInTime)
}

// ListByEvent returns the check-in log of an event, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.CheckIn, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, guest_id, event_id, check_in_time, check_in_by, location, notes
		FROM check_ins WHERE event_id = $1 ORDER BY check_in_time DESC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.CheckIn
	for rows.Next() {
		var ci models.CheckIn
		if err := rows.Scan(&ci.ID, &ci.GuestID, &ci.EventID, &ci.CheckInTime, &ci.CheckInBy, &ci.Location, &ci.Notes); err != nil {
			return nil, err
		}
		list = append(list, ci)
	}
	return list, rows.Err()
}
