package badges

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/validity-events/backend/internal/models"
)

// TemplateRepository handles badge template persistence.
type TemplateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository creates a template repository.
func NewTemplateRepository(pool *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

const templateColumns = `id, name, layout, created_by, created_at, updated_at`

func scanTemplate(row interface{ Scan(dest ...any) error }) (*models.BadgeTemplate, error) {
	var t models.BadgeTemplate
	if err := row.Scan(&t.ID, &t.Name, &t.Layout, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a badge template.
func (r *TemplateRepository) Create(ctx context.Context, t *models.BadgeTemplate) error {
	const q = `INSERT INTO badge_templates (id, name, layout, created_by)
		VALUES (gen_random_uuid(), $1, $2, $3)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, t.Name, t.Layout, t.CreatedBy).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns a template by ID.
func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BadgeTemplate, error) {
	return scanTemplate(r.pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM badge_templates WHERE id = $1`, id))
}

// List returns all templates ordered by name.
func (r *TemplateRepository) List(ctx context.Context) ([]models.BadgeTemplate, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+templateColumns+` FROM badge_templates ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.BadgeTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *t)
	}
	return list, rows.Err()
}

// Update replaces a template's name and layout.
func (r *TemplateRepository) Update(ctx context.Context, t *models.BadgeTemplate) error {
	const q = `UPDATE badge_templates SET name = $2, layout = $3, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, t.ID, t.Name, t.Layout).Scan(&t.UpdatedAt)
}

// Delete removes a template.
func (r *TemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM badge_templates WHERE id = $1`, id)
	return err
}
