package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type qualifiedTeacherLister interface {
	ListQualifiedFor(ctx context.Context, subjectID string) ([]models.Teacher, error)
}

type subjectFinder interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

// AvailabilityService resolves which teachers can take a slot. Every
// qualified teacher is returned, booked or not; booking state and
// workload are annotations for the caller to weigh, not filters. The
// per-day cap is likewise informational and never enforced here.
type AvailabilityService struct {
	teachers      qualifiedTeacherLister
	subjects      subjectFinder
	timetables    timetableScanner
	defaultMaxPPD int
	logger        *zap.Logger
}

// NewAvailabilityService instantiates AvailabilityService.
// defaultMaxPerDay backstops teachers without a configured cap.
func NewAvailabilityService(teachers qualifiedTeacherLister, subjects subjectFinder, timetables timetableScanner, defaultMaxPerDay int, logger *zap.Logger) *AvailabilityService {
	if defaultMaxPerDay <= 0 {
		defaultMaxPerDay = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		teachers:      teachers,
		subjects:      subjects,
		timetables:    timetables,
		defaultMaxPPD: defaultMaxPerDay,
		logger:        logger,
	}
}

// FindAvailableTeachers returns the teachers qualified for a subject,
// each annotated with booking conflicts for the candidate window and
// current workload across all classes. A subject with no qualified
// teachers yields an empty list, not an error.
func (s *AvailabilityService) FindAvailableTeachers(ctx context.Context, subjectID, academicYear string, semester int, day, startTime, endTime, excludeClassID string) ([]models.AvailableTeacher, error) {
	if !models.IsWeekday(day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid day "+day)
	}
	start, end, err := parseWindow(startTime, endTime)
	if err != nil {
		return nil, err
	}

	if _, err := s.subjects.FindByID(ctx, subjectID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	qualified, err := s.teachers.ListQualifiedFor(ctx, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list qualified teachers")
	}
	if len(qualified) == 0 {
		return []models.AvailableTeacher{}, nil
	}

	// One scan serves both the conflict annotations (which exclude the
	// caller's class) and the workload counts (which span every class).
	scoped, err := s.timetables.ListForTerm(ctx, academicYear, semester, excludeClassID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan timetables")
	}
	all := scoped
	if excludeClassID != "" {
		all, err = s.timetables.ListForTerm(ctx, academicYear, semester, "")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to scan timetables")
		}
	}
	workloads := countWorkloads(all)

	out := make([]models.AvailableTeacher, 0, len(qualified))
	for _, teacher := range qualified {
		hits := teacherConflicts(scoped, day, start, end, teacher.ID)
		maxPerDay := teacher.MaxPeriodsPerDay
		if maxPerDay <= 0 {
			maxPerDay = s.defaultMaxPPD
		}
		annotated := models.AvailableTeacher{
			Teacher:                teacher,
			ExperienceLevel:        experienceLevel(teacher.ExperienceYears),
			IsBooked:               len(hits) > 0,
			ConflictingAssignments: hits,
			WorkloadStats:          models.TeacherWorkloadStats{TotalCurrentPeriods: workloads[teacher.ID]},
		}
		annotated.MaxPeriodsPerDay = maxPerDay
		out = append(out, annotated)
	}
	return out, nil
}

// countWorkloads tallies assignments per teacher across all days of
// all loaded aggregates.
func countWorkloads(timetables []models.Timetable) map[string]int {
	counts := make(map[string]int)
	for _, timetable := range timetables {
		for _, entries := range timetable.Weekly {
			for _, entry := range entries {
				counts[entry.TeacherID]++
			}
		}
	}
	return counts
}

// experienceLevel buckets raw years of experience for display.
func experienceLevel(years int) string {
	switch {
	case years < 2:
		return "junior"
	case years < 5:
		return "intermediate"
	case years < 10:
		return "senior"
	default:
		return "expert"
	}
}
