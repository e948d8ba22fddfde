package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type qualifiedListerStub struct {
	teachers []models.Teacher
	err      error
}

func (s qualifiedListerStub) ListQualifiedFor(ctx context.Context, subjectID string) ([]models.Teacher, error) {
	return s.teachers, s.err
}

type subjectLookupStub struct {
	subjects map[string]*models.Subject
	err      error
}

func (s subjectLookupStub) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s.err != nil {
		return nil, s.err
	}
	if subject, ok := s.subjects[id]; ok {
		return subject, nil
	}
	return nil, sql.ErrNoRows
}

func mathSubject() subjectLookupStub {
	return subjectLookupStub{subjects: map[string]*models.Subject{
		"sub-math": {ID: "sub-math", Code: "MATH", Name: "Mathematics"},
	}}
}

func TestAvailabilityServiceUnknownSubject(t *testing.T) {
	service := NewAvailabilityService(qualifiedListerStub{}, subjectLookupStub{}, &scanStub{}, 8, zap.NewNop())

	_, err := service.FindAvailableTeachers(context.Background(), "sub-missing", "2025/2026", 1, "Monday", "08:00", "08:45", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceNoQualifiedTeachers(t *testing.T) {
	service := NewAvailabilityService(qualifiedListerStub{}, mathSubject(), &scanStub{}, 8, zap.NewNop())

	teachers, err := service.FindAvailableTeachers(context.Background(), "sub-math", "2025/2026", 1, "Monday", "08:00", "08:45", "")
	require.NoError(t, err)
	require.NotNil(t, teachers)
	assert.Empty(t, teachers)
}

func TestAvailabilityServiceAnnotatesBookingAndWorkload(t *testing.T) {
	lister := qualifiedListerStub{teachers: []models.Teacher{
		{ID: "t-1", FullName: "Booked Teacher", ExperienceYears: 6, MaxPeriodsPerDay: 5},
		{ID: "t-2", FullName: "Free Teacher", ExperienceYears: 1},
	}}
	scan := &scanStub{timetables: []models.Timetable{
		termTimetable("class-2", "Monday",
			models.PeriodAssignment{PeriodNumber: 1, SubjectID: "sub-math", TeacherID: "t-1", StartTime: "08:00", EndTime: "08:45", Type: models.PeriodTypeTheory},
			models.PeriodAssignment{PeriodNumber: 2, SubjectID: "sub-math", TeacherID: "t-1", StartTime: "08:45", EndTime: "09:30", Type: models.PeriodTypeTheory},
		),
	}}
	service := NewAvailabilityService(lister, mathSubject(), scan, 8, zap.NewNop())

	teachers, err := service.FindAvailableTeachers(context.Background(), "sub-math", "2025/2026", 1, "Monday", "08:00", "08:45", "")
	require.NoError(t, err)
	require.Len(t, teachers, 2)

	booked := teachers[0]
	assert.True(t, booked.IsBooked)
	require.Len(t, booked.ConflictingAssignments, 1)
	assert.Equal(t, "senior", booked.ExperienceLevel)
	assert.Equal(t, 2, booked.WorkloadStats.TotalCurrentPeriods)
	assert.Equal(t, 5, booked.MaxPeriodsPerDay)

	free := teachers[1]
	assert.False(t, free.IsBooked)
	assert.Empty(t, free.ConflictingAssignments)
	assert.Equal(t, "junior", free.ExperienceLevel)
	assert.Equal(t, 0, free.WorkloadStats.TotalCurrentPeriods)
	assert.Equal(t, 8, free.MaxPeriodsPerDay)
}

func TestAvailabilityServiceBookedTeachersStayListed(t *testing.T) {
	lister := qualifiedListerStub{teachers: []models.Teacher{{ID: "t-1", FullName: "Only Teacher", ExperienceYears: 12}}}
	scan := &scanStub{timetables: []models.Timetable{
		termTimetable("class-2", "Friday", models.PeriodAssignment{
			PeriodNumber: 3, SubjectID: "sub-math", TeacherID: "t-1",
			StartTime: "09:30", EndTime: "10:15", Type: models.PeriodTypeTheory,
		}),
	}}
	service := NewAvailabilityService(lister, mathSubject(), scan, 8, zap.NewNop())

	teachers, err := service.FindAvailableTeachers(context.Background(), "sub-math", "2025/2026", 1, "Friday", "09:30", "10:15", "")
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.True(t, teachers[0].IsBooked)
	assert.Equal(t, "expert", teachers[0].ExperienceLevel)
}

func TestAvailabilityServiceInvalidDay(t *testing.T) {
	service := NewAvailabilityService(qualifiedListerStub{}, mathSubject(), &scanStub{}, 8, zap.NewNop())

	_, err := service.FindAvailableTeachers(context.Background(), "sub-math", "2025/2026", 1, "Sunday", "08:00", "08:45", "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
