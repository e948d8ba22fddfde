package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/timeslot"
)

type outlineRepository interface {
	List(ctx context.Context) ([]models.Outline, error)
	FindByID(ctx context.Context, id string) (*models.Outline, error)
	Create(ctx context.Context, outline *models.Outline) error
	Update(ctx context.Context, outline *models.Outline) error
	Delete(ctx context.Context, id string) error
}

type timetableViewCache interface {
	InvalidateByPattern(ctx context.Context, pattern string)
}

// OutlinePeriodRequest is one bell-schedule entry in a create/update
// payload. Duration is computed server-side and ignored on input.
type OutlinePeriodRequest struct {
	Name      string   `json:"name" validate:"required"`
	StartTime string   `json:"start_time" validate:"required"`
	EndTime   string   `json:"end_time" validate:"required"`
	Type      string   `json:"type" validate:"required,oneof=period break"`
	BreakDays []string `json:"break_days,omitempty"`
}

// CreateOutlineRequest describes payload for creating an outline.
type CreateOutlineRequest struct {
	Name        string                 `json:"name" validate:"required"`
	Description string                 `json:"description"`
	Periods     []OutlinePeriodRequest `json:"periods" validate:"required,min=1,dive"`
}

// UpdateOutlineRequest fully replaces an outline, periods included.
type UpdateOutlineRequest struct {
	Name        string                 `json:"name" validate:"required"`
	Description string                 `json:"description"`
	Periods     []OutlinePeriodRequest `json:"periods" validate:"required,min=1,dive"`
}

// OutlineService manages reusable bell schedules. Cached timetable
// views embed outline slots, so mutations flush them through the
// optional view cache.
type OutlineService struct {
	repo      outlineRepository
	views     timetableViewCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewOutlineService instantiates OutlineService. The view cache may
// be nil.
func NewOutlineService(repo outlineRepository, views timetableViewCache, validate *validator.Validate, logger *zap.Logger) *OutlineService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutlineService{repo: repo, views: views, validator: validate, logger: logger}
}

// List returns all outlines.
func (s *OutlineService) List(ctx context.Context) ([]models.Outline, error) {
	outlines, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list outlines")
	}
	return outlines, nil
}

// Get returns one outline by id.
func (s *OutlineService) Get(ctx context.Context, id string) (*models.Outline, error) {
	outline, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "outline not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load outline")
	}
	return outline, nil
}

// Create validates and persists a new outline.
func (s *OutlineService) Create(ctx context.Context, req CreateOutlineRequest) (*models.Outline, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid outline payload")
	}

	periods, err := buildOutlinePeriods(req.Periods)
	if err != nil {
		return nil, err
	}

	outline := &models.Outline{
		Name:        req.Name,
		Description: req.Description,
		Periods:     periods,
	}
	if err := s.repo.Create(ctx, outline); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create outline")
	}
	return outline, nil
}

// Update validates and fully replaces an existing outline.
func (s *OutlineService) Update(ctx context.Context, id string, req UpdateOutlineRequest) (*models.Outline, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid outline payload")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "outline not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load outline")
	}

	periods, err := buildOutlinePeriods(req.Periods)
	if err != nil {
		return nil, err
	}

	updated := &models.Outline{
		ID:          existing.ID,
		Name:        req.Name,
		Description: req.Description,
		Periods:     periods,
		CreatedAt:   existing.CreatedAt,
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "outline not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update outline")
	}
	s.invalidateViews(ctx)
	return updated, nil
}

// Delete removes an outline. Timetables built from it are untouched;
// their outline reference simply stops resolving.
func (s *OutlineService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "outline not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete outline")
	}
	s.invalidateViews(ctx)
	return nil
}

// invalidateViews flushes every cached timetable view. Slot changes
// cannot be mapped back to the classes referencing this outline
// without a scan, so the whole view keyspace is dropped.
func (s *OutlineService) invalidateViews(ctx context.Context) {
	if s.views == nil {
		return
	}
	s.views.InvalidateByPattern(ctx, timetableCachePattern)
}

func buildOutlinePeriods(reqs []OutlinePeriodRequest) ([]models.OutlinePeriod, error) {
	periods := make([]models.OutlinePeriod, 0, len(reqs))
	for _, p := range reqs {
		duration, err := timeslot.DurationMinutes(p.StartTime, p.EndTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid period time")
		}
		for _, day := range p.BreakDays {
			if !models.IsWeekday(day) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "invalid break day "+day)
			}
		}
		periods = append(periods, models.OutlinePeriod{
			Name:      p.Name,
			StartTime: p.StartTime,
			EndTime:   p.EndTime,
			Type:      models.OutlinePeriodType(p.Type),
			BreakDays: p.BreakDays,
			Duration:  duration,
		})
	}
	return periods, nil
}
