package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// OutlineRepository provides persistence for timetable outlines.
// Periods are stored as a JSONB column so the ordered sequence survives
// round-trips untouched.
type OutlineRepository struct {
	db *sqlx.DB
}

// NewOutlineRepository creates a new outline repository.
func NewOutlineRepository(db *sqlx.DB) *OutlineRepository {
	return &OutlineRepository{db: db}
}

type outlineRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description string         `db:"description"`
	Periods     types.JSONText `db:"periods"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (row outlineRow) toModel() (*models.Outline, error) {
	outline := &models.Outline{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
	if len(row.Periods) > 0 {
		if err := json.Unmarshal(row.Periods, &outline.Periods); err != nil {
			return nil, fmt.Errorf("decode outline periods: %w", err)
		}
	}
	return outline, nil
}

// List returns all outlines, unordered beyond name for stable output.
func (r *OutlineRepository) List(ctx context.Context) ([]models.Outline, error) {
	const query = `SELECT id, name, description, periods, created_at, updated_at FROM timetable_outlines ORDER BY name ASC`
	var rows []outlineRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list outlines: %w", err)
	}
	outlines := make([]models.Outline, 0, len(rows))
	for _, row := range rows {
		outline, err := row.toModel()
		if err != nil {
			return nil, err
		}
		outlines = append(outlines, *outline)
	}
	return outlines, nil
}

// FindByID loads one outline by id.
func (r *OutlineRepository) FindByID(ctx context.Context, id string) (*models.Outline, error) {
	const query = `SELECT id, name, description, periods, created_at, updated_at FROM timetable_outlines WHERE id = $1`
	var row outlineRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return row.toModel()
}

// Create stores a new outline.
func (r *OutlineRepository) Create(ctx context.Context, outline *models.Outline) error {
	if outline.ID == "" {
		outline.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	outline.CreatedAt = now
	outline.UpdatedAt = now

	periods, err := json.Marshal(outline.Periods)
	if err != nil {
		return fmt.Errorf("encode outline periods: %w", err)
	}

	const query = `INSERT INTO timetable_outlines (id, name, description, periods, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query, outline.ID, outline.Name, outline.Description, types.JSONText(periods), outline.CreatedAt, outline.UpdatedAt); err != nil {
		return fmt.Errorf("create outline: %w", err)
	}
	return nil
}

// Update fully replaces an outline's fields, periods included.
func (r *OutlineRepository) Update(ctx context.Context, outline *models.Outline) error {
	outline.UpdatedAt = time.Now().UTC()

	periods, err := json.Marshal(outline.Periods)
	if err != nil {
		return fmt.Errorf("encode outline periods: %w", err)
	}

	const query = `UPDATE timetable_outlines SET name = $1, description = $2, periods = $3, updated_at = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query, outline.Name, outline.Description, types.JSONText(periods), outline.UpdatedAt, outline.ID)
	if err != nil {
		return fmt.Errorf("update outline: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an outline by id. Timetables referencing it keep
// their soft reference; there is no cascade.
func (r *OutlineRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM timetable_outlines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete outline: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
