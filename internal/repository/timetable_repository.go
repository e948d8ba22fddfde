package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// TimetableRepository persists weekly timetable aggregates. One row per
// (class, academic year, semester); the week grid lives in a JSONB
// column and every write replaces it wholesale, so multi-day mutations
// land atomically.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository creates a new timetable repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

type timetableRow struct {
	ID           string         `db:"id"`
	ClassID      string         `db:"class_id"`
	AcademicYear string         `db:"academic_year"`
	Semester     int            `db:"semester"`
	OutlineID    *string        `db:"outline_id"`
	Weekly       types.JSONText `db:"weekly_timetable"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (row timetableRow) toModel() (*models.Timetable, error) {
	timetable := &models.Timetable{
		ID:           row.ID,
		ClassID:      row.ClassID,
		AcademicYear: row.AcademicYear,
		Semester:     row.Semester,
		OutlineID:    row.OutlineID,
		Weekly:       models.WeekMap{},
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
	if len(row.Weekly) > 0 {
		if err := json.Unmarshal(row.Weekly, &timetable.Weekly); err != nil {
			return nil, fmt.Errorf("decode weekly timetable: %w", err)
		}
	}
	return timetable, nil
}

const timetableColumns = `id, class_id, academic_year, semester, outline_id, weekly_timetable, created_at, updated_at`

// Find loads the aggregate for a class/year/semester, or sql.ErrNoRows.
func (r *TimetableRepository) Find(ctx context.Context, classID, academicYear string, semester int) (*models.Timetable, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetables WHERE class_id = $1 AND academic_year = $2 AND semester = $3`, timetableColumns)
	var row timetableRow
	if err := r.db.GetContext(ctx, &row, query, classID, academicYear, semester); err != nil {
		return nil, err
	}
	return row.toModel()
}

// ListForTerm returns every class's aggregate for a year/semester,
// optionally excluding one class. The conflict checker scans these.
func (r *TimetableRepository) ListForTerm(ctx context.Context, academicYear string, semester int, excludeClassID string) ([]models.Timetable, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetables WHERE academic_year = $1 AND semester = $2`, timetableColumns)
	args := []interface{}{academicYear, semester}
	if excludeClassID != "" {
		query += ` AND class_id <> $3`
		args = append(args, excludeClassID)
	}
	query += ` ORDER BY class_id ASC`

	var rows []timetableRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list timetables for term: %w", err)
	}
	timetables := make([]models.Timetable, 0, len(rows))
	for _, row := range rows {
		timetable, err := row.toModel()
		if err != nil {
			return nil, err
		}
		timetables = append(timetables, *timetable)
	}
	return timetables, nil
}

// Upsert replaces the aggregate for its key, creating the row on first
// save. The whole week grid and the outline reference are written in a
// single statement; last write wins.
func (r *TimetableRepository) Upsert(ctx context.Context, timetable *models.Timetable) error {
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if timetable.CreatedAt.IsZero() {
		timetable.CreatedAt = now
	}
	timetable.UpdatedAt = now

	weekly, err := json.Marshal(timetable.Weekly)
	if err != nil {
		return fmt.Errorf("encode weekly timetable: %w", err)
	}

	const query = `INSERT INTO timetables (id, class_id, academic_year, semester, outline_id, weekly_timetable, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (class_id, academic_year, semester)
DO UPDATE SET outline_id = EXCLUDED.outline_id, weekly_timetable = EXCLUDED.weekly_timetable, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, timetable.ID, timetable.ClassID, timetable.AcademicYear, timetable.Semester, timetable.OutlineID, types.JSONText(weekly), timetable.CreatedAt, timetable.UpdatedAt); err != nil {
		return fmt.Errorf("upsert timetable: %w", err)
	}
	return nil
}

// Clear empties every day for a class/year and drops the outline
// reference. Clearing a class that has no rows is a no-op.
func (r *TimetableRepository) Clear(ctx context.Context, classID, academicYear string) error {
	const query = `UPDATE timetables SET outline_id = NULL, weekly_timetable = '{}', updated_at = $1 WHERE class_id = $2 AND academic_year = $3`
	if _, err := r.db.ExecContext(ctx, query, time.Now().UTC(), classID, academicYear); err != nil {
		return fmt.Errorf("clear timetable: %w", err)
	}
	return nil
}
