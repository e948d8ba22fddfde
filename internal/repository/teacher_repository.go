package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// TeacherRepository provides persistence for teachers. Subject
// qualifications are a Postgres text array.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new teacher repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

type teacherRow struct {
	ID               string         `db:"id"`
	Email            string         `db:"email"`
	FullName         string         `db:"full_name"`
	Qualifications   pq.StringArray `db:"subject_qualifications"`
	ExperienceYears  int            `db:"experience_years"`
	MaxPeriodsPerDay int            `db:"max_periods_per_day"`
	Active           bool           `db:"active"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (row teacherRow) toModel() models.Teacher {
	return models.Teacher{
		ID:                    row.ID,
		Email:                 row.Email,
		FullName:              row.FullName,
		SubjectQualifications: []string(row.Qualifications),
		ExperienceYears:       row.ExperienceYears,
		MaxPeriodsPerDay:      row.MaxPeriodsPerDay,
		Active:                row.Active,
		CreatedAt:             row.CreatedAt,
		UpdatedAt:             row.UpdatedAt,
	}
}

const teacherColumns = `id, email, full_name, subject_qualifications, experience_years, max_periods_per_day, active, created_at, updated_at`

// List returns teachers with optional filters and pagination.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	base := "FROM teachers WHERE 1=1"
	var args []interface{}

	if filter.Search != "" {
		base += fmt.Sprintf(" AND (full_name ILIKE $%d OR email ILIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Active != nil {
		base += fmt.Sprintf(" AND active = $%d", len(args)+1)
		args = append(args, *filter.Active)
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{"full_name": true, "email": true, "experience_years": true, "created_at": true}
	if !allowedSorts[sortBy] {
		sortBy = "full_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", teacherColumns, base, sortBy, order, size, offset)
	var rows []teacherRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}

	teachers := make([]models.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.toModel())
	}
	return teachers, total, nil
}

// FindByID loads a teacher by id.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf(`SELECT %s FROM teachers WHERE id = $1`, teacherColumns)
	var row teacherRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	teacher := row.toModel()
	return &teacher, nil
}

// ListQualifiedFor returns active teachers whose qualification list
// contains the subject.
func (r *TeacherRepository) ListQualifiedFor(ctx context.Context, subjectID string) ([]models.Teacher, error) {
	query := fmt.Sprintf(`SELECT %s FROM teachers WHERE active = TRUE AND $1 = ANY(subject_qualifications) ORDER BY full_name ASC`, teacherColumns)
	var rows []teacherRow
	if err := r.db.SelectContext(ctx, &rows, query, subjectID); err != nil {
		return nil, fmt.Errorf("list qualified teachers: %w", err)
	}
	teachers := make([]models.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.toModel())
	}
	return teachers, nil
}

// Create inserts a teacher record.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now

	const query = `INSERT INTO teachers (id, email, full_name, subject_qualifications, experience_years, max_periods_per_day, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query, teacher.ID, teacher.Email, teacher.FullName, pq.StringArray(teacher.SubjectQualifications), teacher.ExperienceYears, teacher.MaxPeriodsPerDay, teacher.Active, teacher.CreatedAt, teacher.UpdatedAt); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}
