package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/validity-events/backend/internal/models"
)

// Repository handles event persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, name, description, location, start_date, end_date, created_at, updated_at`

func scanEvent(row interface{ Scan(dest ...any) error }) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Location, &e.StartDate, &e.EndDate, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an event.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (id, name, description, location, start_date, end_date)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.Name, e.Description, e.Location, e.StartDate, e.EndDate).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns an event by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// List returns all events, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}

// Update modifies an event's details.
func (r *Repository) Update(ctx context.Context, e *models.Event) error {
	const q = `UPDATE events SET name = $2, description = $3, location = $4,
		start_date = $5, end_date = $6, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, e.ID, e.Name, e.Description, e.Location, e.StartDate, e.EndDate).
		Scan(&e.UpdatedAt)
}

// Delete removes an event and, via cascade, its guests and check-ins.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	return err
}
