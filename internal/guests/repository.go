package guests

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/validity-events/backend/internal/models"
)

// Repository handles guest persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a guests repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const guestColumns = `id, event_id, first_name, last_name, email, phone, company, job_title,
	registration_type, registered_by, badge_printed, badge_id, check_in_time, created_at, updated_at`

func scanGuest(row interface{ Scan(dest ...any) error }) (*models.Guest, error) {
	var g models.Guest
	err := row.Scan(&g.ID, &g.EventID, &g.FirstName, &g.LastName, &g.Email, &g.Phone,
		&g.Company, &g.JobTitle, &g.RegistrationType, &g.RegisteredBy,
		&g.BadgePrinted, &g.BadgeID, &g.CheckInTime, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts a guest registration.
func (r *Repository) Create(ctx context.Context, g *models.Guest) error {
	const q = `INSERT INTO guests (id, event_id, first_name, last_name, email, phone, company, job_title,
			registration_type, registered_by, badge_id)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, badge_printed, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, g.EventID, g.FirstName, g.LastName, g.Email, g.Phone,
		g.Company, g.JobTitle, g.RegistrationType, g.RegisteredBy, g.BadgeID).
		Scan(&g.ID, &g.BadgePrinted, &g.CreatedAt, &g.UpdatedAt)
}

// GetByID returns a guest by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Guest, error) {
	return scanGuest(r.pool.QueryRow(ctx, `SELECT `+guestColumns+` FROM guests WHERE id = $1`, id))
}

// GetByBadgeID returns a guest by badge id.
func (r *Repository) GetByBadgeID(ctx context.Context, badgeID string) (*models.Guest, error) {
	return scanGuest(r.pool.QueryRow(ctx, `SELECT `+guestColumns+` FROM guests WHERE badge_id = $1`, badgeID))
}

// ListByEvent returns the guests of an event, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Guest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE event_id = $1 ORDER BY created_at DESC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *g)
	}
	return list, rows.Err()
}

// Search returns guests of an event matching name, email or badge id.
func (r *Repository) Search(ctx context.Context, eventID uuid.UUID, query string) ([]models.Guest, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+guestColumns+` FROM guests
		WHERE event_id = $1 AND (first_name ILIKE $2 OR last_name ILIKE $2 OR email ILIKE $2 OR badge_id ILIKE $2)
		ORDER BY last_name, first_name`, eventID, "%"+query+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *g)
	}
	return list, rows.Err()
}

// MarkBadgePrinted flags a guest's badge as printed.
func (r *Repository) MarkBadgePrinted(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE guests SET badge_printed = TRUE, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// SetCheckInTime records the first check-in time for a guest. Returns false
// when the guest was already checked in.
func (r *Repository) SetCheckInTime(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE guests SET check_in_time = NOW(), updated_at = NOW() WHERE id = $1 AND check_in_time IS NULL`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
