package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type ttRepoStub struct {
	stored     map[string]*models.Timetable
	others     []models.Timetable
	upserts    []models.Timetable
	clearCalls int
	findErr    error
	listErr    error
	upsertErr  error
	clearErr   error
}

func (s *ttRepoStub) Find(ctx context.Context, classID, academicYear string, semester int) (*models.Timetable, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if timetable, ok := s.stored[classID]; ok {
		cp := *timetable
		cp.Weekly = timetable.Weekly.Clone()
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *ttRepoStub) ListForTerm(ctx context.Context, academicYear string, semester int, excludeClassID string) ([]models.Timetable, error) {
	return s.others, s.listErr
}

func (s *ttRepoStub) Upsert(ctx context.Context, timetable *models.Timetable) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts = append(s.upserts, *timetable)
	return nil
}

func (s *ttRepoStub) Clear(ctx context.Context, classID, academicYear string) error {
	s.clearCalls++
	return s.clearErr
}

type classCheckStub struct {
	exists bool
	err    error
}

func (s classCheckStub) Exists(ctx context.Context, id string) (bool, error) {
	return s.exists, s.err
}

type outlineFinderStub struct {
	outlines map[string]*models.Outline
	err      error
}

func (s outlineFinderStub) FindByID(ctx context.Context, id string) (*models.Outline, error) {
	if s.err != nil {
		return nil, s.err
	}
	if outline, ok := s.outlines[id]; ok {
		return outline, nil
	}
	return nil, sql.ErrNoRows
}

type conflictCheckStub struct {
	roomHits    []models.ConflictRecord
	teacherHits []models.ConflictRecord
	roomErr     error
	teacherErr  error
	roomCalls   int
}

func (s *conflictCheckStub) CheckRoomConflict(ctx context.Context, academicYear string, semester int, day, startTime, endTime, room, excludeClassID string) ([]models.ConflictRecord, error) {
	s.roomCalls++
	return s.roomHits, s.roomErr
}

func (s *conflictCheckStub) CheckTeacherAvailability(ctx context.Context, academicYear string, semester int, day, startTime, endTime, teacherID, excludeClassID string) ([]models.ConflictRecord, error) {
	return s.teacherHits, s.teacherErr
}

type cacheStub struct {
	views       map[string]*ClassTimetableView
	setKeys     []string
	invalidated []string
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	if view, ok := s.views[key]; ok {
		*dest.(*ClassTimetableView) = *view
		return nil
	}
	return appErrors.ErrCacheMiss
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.setKeys = append(s.setKeys, key)
	return nil
}

func (s *cacheStub) Invalidate(ctx context.Context, keys ...string) {
	s.invalidated = append(s.invalidated, keys...)
}

func newTimetableService(repo *ttRepoStub, outlines outlineFinderStub, conflicts *conflictCheckStub, cache *cacheStub) *TimetableService {
	var c timetableCache
	if cache != nil {
		c = cache
	}
	return NewTimetableService(repo, classCheckStub{exists: true}, outlines, conflicts, c, 5*time.Minute, nil, nil, zap.NewNop())
}

func assignReq() AssignPeriodRequest {
	return AssignPeriodRequest{
		AcademicYear: "2025/2026",
		Semester:     1,
		Day:          "Monday",
		PeriodNumber: 1,
		SubjectID:    "sub-1",
		TeacherID:    "t-1",
		Room:         "101",
	}
}

func TestTimetableServiceAssignFillsWindowFromDefaultGrid(t *testing.T) {
	repo := &ttRepoStub{}
	service := newTimetableService(repo, outlineFinderStub{}, &conflictCheckStub{}, nil)

	result, err := service.AssignPeriod(context.Background(), "class-1", assignReq())
	require.NoError(t, err)
	assert.True(t, result.Applied)
	require.Len(t, repo.upserts, 1)

	entries := result.Weekly["Monday"]
	require.Len(t, entries, 1)
	assert.Equal(t, "08:00", entries[0].StartTime)
	assert.Equal(t, "08:45", entries[0].EndTime)
	assert.Equal(t, models.PeriodTypeTheory, entries[0].Type)
}

func TestTimetableServiceAssignReplacesSamePeriodNumber(t *testing.T) {
	repo := &ttRepoStub{stored: map[string]*models.Timetable{
		"class-1": {
			ID: "tt-1", ClassID: "class-1", AcademicYear: "2025/2026", Semester: 1,
			Weekly: models.WeekMap{"Monday": {{
				PeriodNumber: 1, SubjectID: "sub-old", TeacherID: "t-old",
				StartTime: "08:00", EndTime: "08:45", Type: models.PeriodTypeTheory,
			}}},
		},
	}}
	service := newTimetableService(repo, outlineFinderStub{}, &conflictCheckStub{}, nil)

	result, err := service.AssignPeriod(context.Background(), "class-1", assignReq())
	require.NoError(t, err)

	entries := result.Weekly["Monday"]
	require.Len(t, entries, 1)
	assert.Equal(t, "sub-1", entries[0].SubjectID)
	assert.Equal(t, "t-1", entries[0].TeacherID)
}

func TestTimetableServiceAssignRejectsBreakSlot(t *testing.T) {
	outlines := outlineFinderStub{outlines: map[string]*models.Outline{
		"out-1": {ID: "out-1", Name: "Regular", Periods: []models.OutlinePeriod{
			{Name: "Period 1", StartTime: "08:00", EndTime: "08:45", Type: models.OutlinePeriodTypePeriod},
			{Name: "Recess", StartTime: "08:45", EndTime: "09:00", Type: models.OutlinePeriodTypeBreak},
		}},
	}}
	repo := &ttRepoStub{}
	service := newTimetableService(repo, outlines, &conflictCheckStub{}, nil)

	req := assignReq()
	req.OutlineID = "out-1"
	req.PeriodNumber = 2
	_, err := service.AssignPeriod(context.Background(), "class-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConstraint.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.upserts)
}

func TestTimetableServiceAssignRoomConflictBlocksUntilOverride(t *testing.T) {
	hit := models.ConflictRecord{Type: models.ConflictTypeRoom, ConflictingClass: "class-2", Day: "Monday"}
	conflicts := &conflictCheckStub{roomHits: []models.ConflictRecord{hit}}
	repo := &ttRepoStub{}
	service := newTimetableService(repo, outlineFinderStub{}, conflicts, nil)

	result, err := service.AssignPeriod(context.Background(), "class-1", assignReq())
	require.NoError(t, err)
	assert.False(t, result.Applied)
	require.Len(t, result.Warnings, 1)
	assert.Empty(t, repo.upserts)

	req := assignReq()
	req.OverrideConflicts = true
	result, err = service.AssignPeriod(context.Background(), "class-1", req)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	require.Len(t, result.Warnings, 1)
	require.Len(t, repo.upserts, 1)
}

func TestTimetableServiceAssignTeacherConflictIsAdvisory(t *testing.T) {
	hit := models.ConflictRecord{Type: models.ConflictTypeTeacher, ConflictingClass: "class-2", Day: "Monday"}
	repo := &ttRepoStub{}
	service := newTimetableService(repo, outlineFinderStub{}, &conflictCheckStub{teacherHits: []models.ConflictRecord{hit}}, nil)

	result, err := service.AssignPeriod(context.Background(), "class-1", assignReq())
	require.NoError(t, err)
	assert.True(t, result.Applied)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, models.ConflictTypeTeacher, result.Warnings[0].Type)
	require.Len(t, repo.upserts, 1)
}

func TestTimetableServiceAssignAllDaysSkipsBreakDays(t *testing.T) {
	outlines := outlineFinderStub{outlines: map[string]*models.Outline{
		"out-1": {ID: "out-1", Name: "Regular", Periods: []models.OutlinePeriod{
			{Name: "Period 1", StartTime: "08:00", EndTime: "08:45", Type: models.OutlinePeriodTypePeriod, BreakDays: []string{"Saturday"}},
		}},
	}}
	repo := &ttRepoStub{}
	service := newTimetableService(repo, outlines, &conflictCheckStub{}, nil)

	req := assignReq()
	req.OutlineID = "out-1"
	req.ApplyAllDays = true
	result, err := service.AssignPeriod(context.Background(), "class-1", req)
	require.NoError(t, err)
	assert.True(t, result.Applied)

	for _, day := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"} {
		require.Len(t, result.Weekly[day], 1, day)
	}
	assert.Empty(t, result.Weekly["Saturday"])
}

func TestTimetableServiceOutlineLockedWhilePopulated(t *testing.T) {
	outlineID := "out-1"
	repo := &ttRepoStub{stored: map[string]*models.Timetable{
		"class-1": {
			ID: "tt-1", ClassID: "class-1", AcademicYear: "2025/2026", Semester: 1,
			OutlineID: &outlineID,
			Weekly: models.WeekMap{"Monday": {{
				PeriodNumber: 1, SubjectID: "sub-1", TeacherID: "t-1",
				StartTime: "08:00", EndTime: "08:45", Type: models.PeriodTypeTheory,
			}}},
		},
	}}
	outlines := outlineFinderStub{outlines: map[string]*models.Outline{
		"out-1": {ID: "out-1"},
		"out-2": {ID: "out-2"},
	}}
	service := newTimetableService(repo, outlines, &conflictCheckStub{}, nil)

	req := assignReq()
	req.PeriodNumber = 2
	req.OutlineID = "out-2"
	_, err := service.AssignPeriod(context.Background(), "class-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConstraint.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceOutlineLockedOnPopulatedDefaultGrid(t *testing.T) {
	repo := &ttRepoStub{stored: map[string]*models.Timetable{
		"class-1": {
			ID: "tt-1", ClassID: "class-1", AcademicYear: "2025/2026", Semester: 1,
			Weekly: models.WeekMap{"Monday": {{
				PeriodNumber: 1, SubjectID: "sub-1", TeacherID: "t-1",
				StartTime: "08:00", EndTime: "08:45", Type: models.PeriodTypeTheory,
			}}},
		},
	}}
	outlines := outlineFinderStub{outlines: map[string]*models.Outline{
		"out-2": {ID: "out-2", Periods: []models.OutlinePeriod{
			{Name: "Period 1", StartTime: "07:30", EndTime: "08:30", Type: models.OutlinePeriodTypePeriod},
		}},
	}}
	service := newTimetableService(repo, outlines, &conflictCheckStub{}, nil)

	req := assignReq()
	req.PeriodNumber = 2
	req.OutlineID = "out-2"
	_, err := service.AssignPeriod(context.Background(), "class-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConstraint.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.upserts)
}

func TestTimetableServiceSaveRejectsConflictingGrid(t *testing.T) {
	repo := &ttRepoStub{others: []models.Timetable{
		termTimetable("class-2", "Monday", models.PeriodAssignment{
			PeriodNumber: 1, SubjectID: "sub-9", TeacherID: "t-9",
			StartTime: "08:30", EndTime: "09:15", Room: "101", Type: models.PeriodTypeTheory,
		}),
	}}
	service := newTimetableService(repo, outlineFinderStub{}, &conflictCheckStub{}, nil)

	req := SaveTimetableRequest{
		AcademicYear: "2025/2026",
		Semester:     1,
		Weekly: models.WeekMap{"Monday": {{
			PeriodNumber: 1, SubjectID: "sub-1", TeacherID: "t-1",
			StartTime: "08:00", EndTime: "08:45", Room: "101", Type: models.PeriodTypeTheory,
		}}},
	}
	_, err := service.Save(context.Background(), "class-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.upserts)

	req.OverrideConflicts = true
	saved, err := service.Save(context.Background(), "class-1", req)
	require.NoError(t, err)
	require.Len(t, repo.upserts, 1)
	require.Len(t, saved.Weekly["Monday"], 1)
}

func TestTimetableServiceSaveRejectsDuplicatePeriodNumbers(t *testing.T) {
	service := newTimetableService(&ttRepoStub{}, outlineFinderStub{}, &conflictCheckStub{}, nil)

	req := SaveTimetableRequest{
		AcademicYear: "2025/2026",
		Semester:     1,
		Weekly: models.WeekMap{"Monday": {
			{PeriodNumber: 1, SubjectID: "sub-1", TeacherID: "t-1", StartTime: "08:00", EndTime: "08:45", Type: models.PeriodTypeTheory},
			{PeriodNumber: 1, SubjectID: "sub-2", TeacherID: "t-2", StartTime: "08:45", EndTime: "09:30", Type: models.PeriodTypeTheory},
		}},
	}
	_, err := service.Save(context.Background(), "class-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceRemovePeriod(t *testing.T) {
	repo := &ttRepoStub{stored: map[string]*models.Timetable{
		"class-1": {
			ID: "tt-1", ClassID: "class-1", AcademicYear: "2025/2026", Semester: 1,
			Weekly: models.WeekMap{"Monday": {
				{PeriodNumber: 1, SubjectID: "sub-1", TeacherID: "t-1", StartTime: "08:00", EndTime: "08:45", Type: models.PeriodTypeTheory},
				{PeriodNumber: 2, SubjectID: "sub-2", TeacherID: "t-2", StartTime: "08:45", EndTime: "09:30", Type: models.PeriodTypeTheory},
			}},
		},
	}}
	service := newTimetableService(repo, outlineFinderStub{}, &conflictCheckStub{}, nil)

	view, err := service.RemovePeriod(context.Background(), "class-1", RemovePeriodRequest{
		AcademicYear: "2025/2026", Semester: 1, Day: "Monday", PeriodNumber: 1,
	})
	require.NoError(t, err)
	require.Len(t, repo.upserts, 1)
	require.Len(t, view.Weekly["Monday"], 1)
	assert.Equal(t, 2, view.Weekly["Monday"][0].PeriodNumber)
}

func TestTimetableServiceRemoveMissingPeriodIsNoop(t *testing.T) {
	repo := &ttRepoStub{}
	service := newTimetableService(repo, outlineFinderStub{}, &conflictCheckStub{}, nil)

	view, err := service.RemovePeriod(context.Background(), "class-1", RemovePeriodRequest{
		AcademicYear: "2025/2026", Semester: 1, Day: "Monday", PeriodNumber: 5,
	})
	require.NoError(t, err)
	assert.Empty(t, repo.upserts)
	assert.Empty(t, view.Weekly["Monday"])
}

func TestTimetableServiceRemoveUnknownClass(t *testing.T) {
	service := NewTimetableService(&ttRepoStub{}, classCheckStub{exists: false}, outlineFinderStub{}, &conflictCheckStub{}, nil, 0, nil, nil, zap.NewNop())

	_, err := service.RemovePeriod(context.Background(), "class-missing", RemovePeriodRequest{
		AcademicYear: "2025/2026", Semester: 1, Day: "Monday", PeriodNumber: 1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceClearInvalidatesBothSemesters(t *testing.T) {
	repo := &ttRepoStub{}
	cache := &cacheStub{}
	service := newTimetableService(repo, outlineFinderStub{}, &conflictCheckStub{}, cache)

	require.NoError(t, service.Clear(context.Background(), "class-1", "2025/2026"))
	assert.Equal(t, 1, repo.clearCalls)
	assert.Contains(t, cache.invalidated, "timetable:class-1:2025/2026:1")
	assert.Contains(t, cache.invalidated, "timetable:class-1:2025/2026:2")
}

func TestTimetableServiceGetUnknownClass(t *testing.T) {
	service := NewTimetableService(&ttRepoStub{}, classCheckStub{exists: false}, outlineFinderStub{}, &conflictCheckStub{}, nil, 0, nil, nil, zap.NewNop())

	_, err := service.GetForClass(context.Background(), "class-missing", "2025/2026", 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGetCachesView(t *testing.T) {
	repo := &ttRepoStub{}
	cache := &cacheStub{views: map[string]*ClassTimetableView{}}
	service := newTimetableService(repo, outlineFinderStub{}, &conflictCheckStub{}, cache)

	view, err := service.GetForClass(context.Background(), "class-1", "2025/2026", 1)
	require.NoError(t, err)
	assert.Len(t, view.Slots, 8)
	assert.Contains(t, cache.setKeys, "timetable:class-1:2025/2026:1")
}

func TestTimetableServiceGetServedFromCache(t *testing.T) {
	cached := &ClassTimetableView{ClassID: "class-1", AcademicYear: "2025/2026", Semester: 1, Weekly: models.WeekMap{}}
	cache := &cacheStub{views: map[string]*ClassTimetableView{
		"timetable:class-1:2025/2026:1": cached,
	}}
	repo := &ttRepoStub{findErr: sql.ErrConnDone}
	service := newTimetableService(repo, outlineFinderStub{}, &conflictCheckStub{}, cache)

	view, err := service.GetForClass(context.Background(), "class-1", "2025/2026", 1)
	require.NoError(t, err)
	assert.Equal(t, "class-1", view.ClassID)
}

func TestTimetableServiceDeletedOutlineFallsBackToDefaults(t *testing.T) {
	outlineID := "out-gone"
	repo := &ttRepoStub{stored: map[string]*models.Timetable{
		"class-1": {
			ID: "tt-1", ClassID: "class-1", AcademicYear: "2025/2026", Semester: 1,
			OutlineID: &outlineID,
			Weekly:    models.WeekMap{},
		},
	}}
	service := newTimetableService(repo, outlineFinderStub{}, &conflictCheckStub{}, nil)

	view, err := service.GetForClass(context.Background(), "class-1", "2025/2026", 1)
	require.NoError(t, err)
	assert.Len(t, view.Slots, 8)
	assert.Equal(t, "08:00", view.Slots[0].StartTime)
}
