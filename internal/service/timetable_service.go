package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/timeslot"
)

type timetableRepository interface {
	Find(ctx context.Context, classID, academicYear string, semester int) (*models.Timetable, error)
	ListForTerm(ctx context.Context, academicYear string, semester int, excludeClassID string) ([]models.Timetable, error)
	Upsert(ctx context.Context, timetable *models.Timetable) error
	Clear(ctx context.Context, classID, academicYear string) error
}

type classChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type outlineFinder interface {
	FindByID(ctx context.Context, id string) (*models.Outline, error)
}

type conflictChecker interface {
	CheckRoomConflict(ctx context.Context, academicYear string, semester int, day, startTime, endTime, room, excludeClassID string) ([]models.ConflictRecord, error)
	CheckTeacherAvailability(ctx context.Context, academicYear string, semester int, day, startTime, endTime, teacherID, excludeClassID string) ([]models.ConflictRecord, error)
}

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string)
}

// defaultSlots is the fixed fallback grid used when a class has no
// outline selected: 8 periods of 45 minutes from 08:00. The last slot
// is stored as "01:30"-"02:15", a 12-hour rendition of 13:30-14:15
// carried over from the legacy default schedule; the duration rule's
// wrap-around handling exists for entries like it.
func defaultSlots() []models.TimetableSlot {
	return []models.TimetableSlot{
		{PeriodNumber: 1, Name: "Period 1", StartTime: "08:00", EndTime: "08:45", Type: models.OutlinePeriodTypePeriod},
		{PeriodNumber: 2, Name: "Period 2", StartTime: "08:45", EndTime: "09:30", Type: models.OutlinePeriodTypePeriod},
		{PeriodNumber: 3, Name: "Period 3", StartTime: "09:30", EndTime: "10:15", Type: models.OutlinePeriodTypePeriod},
		{PeriodNumber: 4, Name: "Period 4", StartTime: "10:15", EndTime: "11:00", Type: models.OutlinePeriodTypePeriod},
		{PeriodNumber: 5, Name: "Period 5", StartTime: "11:00", EndTime: "11:45", Type: models.OutlinePeriodTypePeriod},
		{PeriodNumber: 6, Name: "Period 6", StartTime: "11:45", EndTime: "12:30", Type: models.OutlinePeriodTypePeriod},
		{PeriodNumber: 7, Name: "Period 7", StartTime: "12:30", EndTime: "13:15", Type: models.OutlinePeriodTypePeriod},
		{PeriodNumber: 8, Name: "Period 8", StartTime: "01:30", EndTime: "02:15", Type: models.OutlinePeriodTypePeriod},
	}
}

// resolveSlots derives the grid slots from an outline, falling back to
// the fixed default schedule when no outline is selected. Breaks are
// included so callers can render them; they are never assignable.
func resolveSlots(outline *models.Outline) []models.TimetableSlot {
	if outline == nil || len(outline.Periods) == 0 {
		return defaultSlots()
	}
	slots := make([]models.TimetableSlot, 0, len(outline.Periods))
	for i, period := range outline.Periods {
		slots = append(slots, models.TimetableSlot{
			PeriodNumber: i + 1,
			Name:         period.Name,
			StartTime:    period.StartTime,
			EndTime:      period.EndTime,
			Type:         period.Type,
		})
	}
	return slots
}

// slotIsBreak reports whether the numbered slot is a break on the
// given day under the outline (or never, on the default grid).
func slotIsBreak(outline *models.Outline, periodNumber int, day string) bool {
	if outline == nil {
		return false
	}
	idx := periodNumber - 1
	if idx < 0 || idx >= len(outline.Periods) {
		return false
	}
	return outline.Periods[idx].IsBreakOn(day)
}

func slotWindow(slots []models.TimetableSlot, periodNumber int) (models.TimetableSlot, bool) {
	for _, slot := range slots {
		if slot.PeriodNumber == periodNumber {
			return slot, true
		}
	}
	return models.TimetableSlot{}, false
}

// ClassTimetableView is the read model for one class's weekly grid.
type ClassTimetableView struct {
	ClassID      string                 `json:"class_id"`
	AcademicYear string                 `json:"academic_year"`
	Semester     int                    `json:"semester"`
	OutlineID    *string                `json:"outline_id"`
	Weekly       models.WeekMap         `json:"weekly_timetable"`
	Slots        []models.TimetableSlot `json:"slots"`
	// Cached is set on reads served from Redis; it is not serialized,
	// so a cached copy always round-trips as false.
	Cached bool `json:"-"`
}

// AssignPeriodRequest describes a single-slot assignment. StartTime
// and EndTime are optional; when omitted they are taken from the slot.
type AssignPeriodRequest struct {
	AcademicYear      string `json:"academic_year" validate:"required"`
	Semester          int    `json:"semester" validate:"required,min=1,max=2"`
	Day               string `json:"day" validate:"required"`
	PeriodNumber      int    `json:"period_number" validate:"required,min=1"`
	SubjectID         string `json:"subject_id" validate:"required"`
	TeacherID         string `json:"teacher_id" validate:"required"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	Room              string `json:"room"`
	Type              string `json:"type"`
	OutlineID         string `json:"outline_id"`
	ApplyAllDays      bool   `json:"apply_all_days"`
	OverrideConflicts bool   `json:"override_conflicts"`
}

// AssignPeriodResult reports whether the write landed and carries any
// advisory conflict records. Room conflicts leave Applied false until
// the caller overrides; teacher conflicts ride along regardless.
type AssignPeriodResult struct {
	Applied  bool                    `json:"applied"`
	Weekly   models.WeekMap          `json:"weekly_timetable"`
	Warnings []models.ConflictRecord `json:"warnings,omitempty"`
}

// SaveTimetableRequest is the full-replace persistence payload.
type SaveTimetableRequest struct {
	AcademicYear      string         `json:"academic_year" validate:"required"`
	Semester          int            `json:"semester" validate:"required,min=1,max=2"`
	OutlineID         string         `json:"outline_id"`
	Weekly            models.WeekMap `json:"weekly_timetable" validate:"required"`
	OverrideConflicts bool           `json:"override_conflicts"`
}

// RemovePeriodRequest identifies one entry to delete.
type RemovePeriodRequest struct {
	AcademicYear string `json:"academic_year" validate:"required"`
	Semester     int    `json:"semester" validate:"required,min=1,max=2"`
	Day          string `json:"day" validate:"required"`
	PeriodNumber int    `json:"period_number" validate:"required,min=1"`
}

// TimetableService assembles the weekly grid for a class and mediates
// every period-assignment mutation before persistence.
type TimetableService struct {
	repo      timetableRepository
	classes   classChecker
	outlines  outlineFinder
	conflicts conflictChecker
	cache     timetableCache
	cacheTTL  time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService instantiates TimetableService. The cache may be
// nil, in which case reads always hit the database.
func NewTimetableService(repo timetableRepository, classes classChecker, outlines outlineFinder, conflicts conflictChecker, cache timetableCache, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		repo:      repo,
		classes:   classes,
		outlines:  outlines,
		conflicts: conflicts,
		cache:     cache,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// GetForClass returns the stored weekly grid plus the derived slot
// list. An absent aggregate is a valid empty timetable, not an error;
// only an unknown class is.
func (s *TimetableService) GetForClass(ctx context.Context, classID, academicYear string, semester int) (*ClassTimetableView, error) {
	exists, err := s.classes.Exists(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	cacheKey := timetableCacheKey(classID, academicYear, semester)
	if s.cache != nil {
		var cached ClassTimetableView
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.metrics.ObserveCacheLookup(true)
			cached.Cached = true
			return &cached, nil
		}
		s.metrics.ObserveCacheLookup(false)
	}

	timetable, err := s.loadOrEmpty(ctx, classID, academicYear, semester)
	if err != nil {
		return nil, err
	}

	outline, err := s.resolveOutline(ctx, timetable.OutlineID)
	if err != nil {
		return nil, err
	}

	view := &ClassTimetableView{
		ClassID:      classID,
		AcademicYear: academicYear,
		Semester:     semester,
		OutlineID:    timetable.OutlineID,
		Weekly:       timetable.Weekly,
		Slots:        resolveSlots(outline),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, view, s.cacheTTL); err != nil {
			s.logger.Warn("timetable cache set failed", zap.String("class_id", classID), zap.Error(err))
		}
	}
	return view, nil
}

// AssignPeriod inserts or replaces one period assignment, or the same
// assignment across every non-break day when ApplyAllDays is set. Room
// conflicts are returned as warnings and block the write until the
// caller re-invokes with OverrideConflicts.
func (s *TimetableService) AssignPeriod(ctx context.Context, classID string, req AssignPeriodRequest) (*AssignPeriodResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if !models.IsWeekday(req.Day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid day "+req.Day)
	}
	entryType := models.PeriodAssignmentType(req.Type)
	if req.Type == "" {
		entryType = models.PeriodTypeTheory
	}
	if !models.ValidPeriodType(entryType) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid period type "+req.Type)
	}

	exists, err := s.classes.Exists(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	timetable, err := s.loadOrEmpty(ctx, classID, req.AcademicYear, req.Semester)
	if err != nil {
		return nil, err
	}

	outlineID, err := s.reconcileOutlineID(timetable, req.OutlineID)
	if err != nil {
		return nil, err
	}
	outline, err := s.resolveOutline(ctx, outlineID)
	if err != nil {
		return nil, err
	}

	if slotIsBreak(outline, req.PeriodNumber, req.Day) {
		return nil, appErrors.Clone(appErrors.ErrConstraint, fmt.Sprintf("period %d on %s is a break slot", req.PeriodNumber, req.Day))
	}

	startTime, endTime := req.StartTime, req.EndTime
	if startTime == "" || endTime == "" {
		slot, ok := slotWindow(resolveSlots(outline), req.PeriodNumber)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("no slot for period %d and no explicit time window", req.PeriodNumber))
		}
		startTime, endTime = slot.StartTime, slot.EndTime
	}
	if !timeslot.IsClock(startTime) || !timeslot.IsClock(endTime) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid time window")
	}

	var warnings []models.ConflictRecord

	teacherHits, err := s.conflicts.CheckTeacherAvailability(ctx, req.AcademicYear, req.Semester, req.Day, startTime, endTime, req.TeacherID, classID)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, teacherHits...)

	roomHits, err := s.conflicts.CheckRoomConflict(ctx, req.AcademicYear, req.Semester, req.Day, startTime, endTime, req.Room, classID)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, roomHits...)

	if len(roomHits) > 0 && !req.OverrideConflicts {
		return &AssignPeriodResult{Applied: false, Weekly: timetable.Weekly, Warnings: warnings}, nil
	}

	entry := models.PeriodAssignment{
		PeriodNumber: req.PeriodNumber,
		SubjectID:    req.SubjectID,
		TeacherID:    req.TeacherID,
		StartTime:    startTime,
		EndTime:      endTime,
		Room:         req.Room,
		Type:         entryType,
	}

	weekly := timetable.Weekly.Clone()
	if req.ApplyAllDays {
		for _, day := range models.Weekdays {
			if slotIsBreak(outline, req.PeriodNumber, day) {
				continue
			}
			weekly[day] = replaceEntry(weekly[day], entry)
		}
	} else {
		weekly[req.Day] = replaceEntry(weekly[req.Day], entry)
	}

	timetable.Weekly = weekly
	timetable.OutlineID = outlineID
	if err := s.repo.Upsert(ctx, timetable); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable")
	}
	s.invalidate(ctx, classID, req.AcademicYear, req.Semester)

	return &AssignPeriodResult{Applied: true, Weekly: weekly, Warnings: warnings}, nil
}

// RemovePeriod deletes the matching entry from one day. Removing an
// entry that does not exist is a no-op, not an error.
func (s *TimetableService) RemovePeriod(ctx context.Context, classID string, req RemovePeriodRequest) (*ClassTimetableView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid removal payload")
	}
	if !models.IsWeekday(req.Day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid day "+req.Day)
	}

	exists, err := s.classes.Exists(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	timetable, err := s.loadOrEmpty(ctx, classID, req.AcademicYear, req.Semester)
	if err != nil {
		return nil, err
	}

	entries := timetable.Weekly[req.Day]
	filtered := entries[:0:0]
	for _, entry := range entries {
		if entry.PeriodNumber != req.PeriodNumber {
			filtered = append(filtered, entry)
		}
	}
	if len(filtered) != len(entries) {
		weekly := timetable.Weekly.Clone()
		weekly[req.Day] = filtered
		timetable.Weekly = weekly
		if err := s.repo.Upsert(ctx, timetable); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable")
		}
		s.invalidate(ctx, classID, req.AcademicYear, req.Semester)
	}

	outline, err := s.resolveOutline(ctx, timetable.OutlineID)
	if err != nil {
		return nil, err
	}
	return &ClassTimetableView{
		ClassID:      classID,
		AcademicYear: req.AcademicYear,
		Semester:     req.Semester,
		OutlineID:    timetable.OutlineID,
		Weekly:       timetable.Weekly,
		Slots:        resolveSlots(outline),
	}, nil
}

// Save fully replaces the aggregate. Unless overridden the whole grid
// is re-validated for room conflicts against every other class first.
func (s *TimetableService) Save(ctx context.Context, classID string, req SaveTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}

	exists, err := s.classes.Exists(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	timetable, err := s.loadOrEmpty(ctx, classID, req.AcademicYear, req.Semester)
	if err != nil {
		return nil, err
	}

	outlineID, err := s.reconcileOutlineID(timetable, req.OutlineID)
	if err != nil {
		return nil, err
	}
	outline, err := s.resolveOutline(ctx, outlineID)
	if err != nil {
		return nil, err
	}

	weekly, err := normalizeWeekly(req.Weekly, outline)
	if err != nil {
		return nil, err
	}

	if !req.OverrideConflicts {
		conflicts, err := s.gridConflicts(ctx, classID, req.AcademicYear, req.Semester, weekly)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			domainErr := &models.TimetableConflictError{
				Message:   fmt.Sprintf("%d room conflict(s) detected", len(conflicts)),
				Conflicts: conflicts,
			}
			return nil, appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, domainErr.Message)
		}
	}

	timetable.Weekly = weekly
	timetable.OutlineID = outlineID
	if err := s.repo.Upsert(ctx, timetable); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable")
	}
	s.invalidate(ctx, classID, req.AcademicYear, req.Semester)
	return timetable, nil
}

// Clear empties every day for a class and academic year and drops the
// outline reference, unlocking outline re-selection.
func (s *TimetableService) Clear(ctx context.Context, classID, academicYear string) error {
	exists, err := s.classes.Exists(ctx, classID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check class")
	}
	if !exists {
		return appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	if err := s.repo.Clear(ctx, classID, academicYear); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear timetable")
	}
	for semester := 1; semester <= 2; semester++ {
		s.invalidate(ctx, classID, academicYear, semester)
	}
	return nil
}

func (s *TimetableService) loadOrEmpty(ctx context.Context, classID, academicYear string, semester int) (*models.Timetable, error) {
	timetable, err := s.repo.Find(ctx, classID, academicYear, semester)
	if err != nil {
		if err == sql.ErrNoRows {
			return &models.Timetable{
				ClassID:      classID,
				AcademicYear: academicYear,
				Semester:     semester,
				Weekly:       models.WeekMap{},
			}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return timetable, nil
}

// reconcileOutlineID enforces the outline lock: once any day holds an
// assignment the outline selection is frozen until the timetable is
// cleared. That covers the default grid too: a populated timetable
// with no outline cannot adopt one, since its entries carry
// default-grid windows that a different outline's slots would not
// match.
func (s *TimetableService) reconcileOutlineID(timetable *models.Timetable, requested string) (*string, error) {
	current := timetable.OutlineID
	if requested == "" {
		return current, nil
	}
	if current != nil && *current == requested {
		return current, nil
	}
	if !timetable.Weekly.IsEmpty() {
		return nil, appErrors.Clone(appErrors.ErrConstraint, "outline cannot be changed while the timetable has assignments; clear it first")
	}
	return &requested, nil
}

func (s *TimetableService) resolveOutline(ctx context.Context, outlineID *string) (*models.Outline, error) {
	if outlineID == nil || *outlineID == "" {
		return nil, nil
	}
	outline, err := s.outlines.FindByID(ctx, *outlineID)
	if err != nil {
		if err == sql.ErrNoRows {
			// Soft reference: the outline was deleted after selection.
			// Fall back to the default grid rather than failing reads.
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load outline")
	}
	return outline, nil
}

func (s *TimetableService) gridConflicts(ctx context.Context, classID, academicYear string, semester int, weekly models.WeekMap) ([]models.ConflictRecord, error) {
	others, err := s.repo.ListForTerm(ctx, academicYear, semester, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan timetables")
	}
	var conflicts []models.ConflictRecord
	for day, entries := range weekly {
		for _, entry := range entries {
			if entry.Room == "" {
				continue
			}
			start, err := timeslot.ParseClock(entry.StartTime)
			if err != nil {
				continue
			}
			end, err := timeslot.ParseClock(entry.EndTime)
			if err != nil {
				continue
			}
			conflicts = append(conflicts, roomConflicts(others, day, start, end, entry.Room)...)
		}
	}
	return conflicts, nil
}

func (s *TimetableService) invalidate(ctx context.Context, classID, academicYear string, semester int) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, timetableCacheKey(classID, academicYear, semester))
}

// timetableCachePattern matches every cached timetable view.
const timetableCachePattern = "timetable:*"

func timetableCacheKey(classID, academicYear string, semester int) string {
	return fmt.Sprintf("timetable:%s:%s:%d", classID, academicYear, semester)
}

// replaceEntry drops any prior assignment with the same period number
// and inserts the new one, keeping the day sorted by period number.
func replaceEntry(entries []models.PeriodAssignment, entry models.PeriodAssignment) []models.PeriodAssignment {
	out := make([]models.PeriodAssignment, 0, len(entries)+1)
	for _, existing := range entries {
		if existing.PeriodNumber != entry.PeriodNumber {
			out = append(out, existing)
		}
	}
	out = append(out, entry)
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodNumber < out[j].PeriodNumber })
	return out
}

// normalizeWeekly validates a submitted grid and returns it with each
// day sorted by period number.
func normalizeWeekly(weekly models.WeekMap, outline *models.Outline) (models.WeekMap, error) {
	out := models.WeekMap{}
	for day, entries := range weekly {
		if !models.IsWeekday(day) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid day "+day)
		}
		seen := make(map[int]bool, len(entries))
		cp := make([]models.PeriodAssignment, 0, len(entries))
		for _, entry := range entries {
			if entry.PeriodNumber < 1 {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid period number %d on %s", entry.PeriodNumber, day))
			}
			if seen[entry.PeriodNumber] {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate period number %d on %s", entry.PeriodNumber, day))
			}
			seen[entry.PeriodNumber] = true
			if entry.SubjectID == "" || entry.TeacherID == "" {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("missing subject or teacher for period %d on %s", entry.PeriodNumber, day))
			}
			if !timeslot.IsClock(entry.StartTime) || !timeslot.IsClock(entry.EndTime) {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid time window for period %d on %s", entry.PeriodNumber, day))
			}
			if entry.Type == "" {
				entry.Type = models.PeriodTypeTheory
			}
			if !models.ValidPeriodType(entry.Type) {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid period type %q on %s", entry.Type, day))
			}
			if slotIsBreak(outline, entry.PeriodNumber, day) {
				return nil, appErrors.Clone(appErrors.ErrConstraint, fmt.Sprintf("period %d on %s is a break slot", entry.PeriodNumber, day))
			}
			cp = append(cp, entry)
		}
		sort.Slice(cp, func(i, j int) bool { return cp[i].PeriodNumber < cp[j].PeriodNumber })
		out[day] = cp
	}
	return out, nil
}
