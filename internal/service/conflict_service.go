package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/timeslot"
)

type timetableScanner interface {
	ListForTerm(ctx context.Context, academicYear string, semester int, excludeClassID string) ([]models.Timetable, error)
}

// ConflictService detects double-bookings across every class timetable
// in a term. Room conflicts block a write unless overridden; teacher
// conflicts are advisory and never block, since a teacher may teach
// concurrent sections.
//
// The read-then-decide scan is not isolated from concurrent writers:
// two callers booking the same room at the same moment can both pass
// and both commit. That race is accepted; checks here are advisory.
type ConflictService struct {
	repo    timetableScanner
	metrics *MetricsService
	logger  *zap.Logger
}

// NewConflictService instantiates ConflictService.
func NewConflictService(repo timetableScanner, metrics *MetricsService, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{repo: repo, metrics: metrics, logger: logger}
}

// CheckRoomConflict returns every existing assignment in the term that
// occupies the same room on the same day with an overlapping window.
// An empty room never conflicts; room-less periods are exempt from
// scanning entirely.
func (s *ConflictService) CheckRoomConflict(ctx context.Context, academicYear string, semester int, day, startTime, endTime, room, excludeClassID string) ([]models.ConflictRecord, error) {
	if room == "" {
		return nil, nil
	}
	start, end, err := parseWindow(startTime, endTime)
	if err != nil {
		return nil, err
	}

	timetables, err := s.repo.ListForTerm(ctx, academicYear, semester, excludeClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan timetables")
	}

	conflicts := roomConflicts(timetables, day, start, end, room)
	s.metrics.ObserveConflictCheck("room", len(conflicts) > 0)
	return conflicts, nil
}

// CheckTeacherAvailability returns every existing assignment in the
// term where the teacher is already booked on an overlapping window.
// Matches are informational only.
func (s *ConflictService) CheckTeacherAvailability(ctx context.Context, academicYear string, semester int, day, startTime, endTime, teacherID, excludeClassID string) ([]models.ConflictRecord, error) {
	start, end, err := parseWindow(startTime, endTime)
	if err != nil {
		return nil, err
	}

	timetables, err := s.repo.ListForTerm(ctx, academicYear, semester, excludeClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan timetables")
	}

	conflicts := teacherConflicts(timetables, day, start, end, teacherID)
	s.metrics.ObserveConflictCheck("teacher", len(conflicts) > 0)
	return conflicts, nil
}

func parseWindow(startTime, endTime string) (int, int, error) {
	start, err := timeslot.ParseClock(startTime)
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start time")
	}
	end, err := timeslot.ParseClock(endTime)
	if err != nil {
		return 0, 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid end time")
	}
	return start, end, nil
}

// roomConflicts scans loaded aggregates for same-day, same-room overlap
// with the [start, end) candidate window. Room comparison is exact and
// case-sensitive; entries without a room are skipped.
func roomConflicts(timetables []models.Timetable, day string, start, end int, room string) []models.ConflictRecord {
	var conflicts []models.ConflictRecord
	for _, timetable := range timetables {
		for _, entry := range timetable.Weekly[day] {
			if entry.Room == "" || entry.Room != room {
				continue
			}
			if !entryOverlaps(entry, start, end) {
				continue
			}
			conflicts = append(conflicts, models.ConflictRecord{
				Type:              models.ConflictTypeRoom,
				Message:           fmt.Sprintf("room %s already booked on %s %s-%s", room, day, entry.StartTime, entry.EndTime),
				ConflictingClass:  timetable.ClassID,
				Day:               day,
				ConflictingPeriod: entry,
			})
		}
	}
	return conflicts
}

// teacherConflicts is the teacher-keyed counterpart of roomConflicts.
func teacherConflicts(timetables []models.Timetable, day string, start, end int, teacherID string) []models.ConflictRecord {
	var conflicts []models.ConflictRecord
	for _, timetable := range timetables {
		for _, entry := range timetable.Weekly[day] {
			if entry.TeacherID != teacherID {
				continue
			}
			if !entryOverlaps(entry, start, end) {
				continue
			}
			conflicts = append(conflicts, models.ConflictRecord{
				Type:              models.ConflictTypeTeacher,
				Message:           fmt.Sprintf("teacher already scheduled on %s %s-%s", day, entry.StartTime, entry.EndTime),
				ConflictingClass:  timetable.ClassID,
				Day:               day,
				ConflictingPeriod: entry,
			})
		}
	}
	return conflicts
}

func entryOverlaps(entry models.PeriodAssignment, start, end int) bool {
	entryStart, err := timeslot.ParseClock(entry.StartTime)
	if err != nil {
		return false
	}
	entryEnd, err := timeslot.ParseClock(entry.EndTime)
	if err != nil {
		return false
	}
	return timeslot.Overlaps(start, end, entryStart, entryEnd)
}
