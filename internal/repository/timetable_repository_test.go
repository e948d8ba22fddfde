package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const timetableSelect = `SELECT id, class_id, academic_year, semester, outline_id, weekly_timetable, created_at, updated_at FROM timetables`

func TestTimetableRepositoryFind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	weekly := types.JSONText(`{"Monday":[{"period_number":1,"subject_id":"sub-1","teacher_id":"t-1","start_time":"08:00","end_time":"08:45","room":"101","type":"theory"}]}`)
	rows := sqlmock.NewRows([]string{"id", "class_id", "academic_year", "semester", "outline_id", "weekly_timetable", "created_at", "updated_at"}).
		AddRow("tt-1", "class-1", "2025/2026", 1, "out-1", weekly, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(timetableSelect+` WHERE class_id = $1 AND academic_year = $2 AND semester = $3`)).
		WithArgs("class-1", "2025/2026", 1).
		WillReturnRows(rows)

	timetable, err := repo.Find(context.Background(), "class-1", "2025/2026", 1)
	require.NoError(t, err)
	require.NotNil(t, timetable.OutlineID)
	assert.Equal(t, "out-1", *timetable.OutlineID)
	require.Len(t, timetable.Weekly["Monday"], 1)
	assert.Equal(t, "101", timetable.Weekly["Monday"][0].Room)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListForTermExcludesClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "academic_year", "semester", "outline_id", "weekly_timetable", "created_at", "updated_at"}).
		AddRow("tt-2", "class-2", "2025/2026", 1, nil, types.JSONText(`{}`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(timetableSelect+` WHERE academic_year = $1 AND semester = $2 AND class_id <> $3 ORDER BY class_id ASC`)).
		WithArgs("2025/2026", 1, "class-1").
		WillReturnRows(rows)

	timetables, err := repo.ListForTerm(context.Background(), "2025/2026", 1, "class-1")
	require.NoError(t, err)
	require.Len(t, timetables, 1)
	assert.Equal(t, "class-2", timetables[0].ClassID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListForTermAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "academic_year", "semester", "outline_id", "weekly_timetable", "created_at", "updated_at"})
	mock.ExpectQuery(regexp.QuoteMeta(timetableSelect+` WHERE academic_year = $1 AND semester = $2 ORDER BY class_id ASC`)).
		WithArgs("2025/2026", 1).
		WillReturnRows(rows)

	timetables, err := repo.ListForTerm(context.Background(), "2025/2026", 1, "")
	require.NoError(t, err)
	assert.Empty(t, timetables)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WithArgs(sqlmock.AnyArg(), "class-1", "2025/2026", 1, nil, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	timetable := &models.Timetable{
		ClassID:      "class-1",
		AcademicYear: "2025/2026",
		Semester:     1,
		Weekly: models.WeekMap{
			"Monday": {{PeriodNumber: 1, SubjectID: "sub-1", TeacherID: "t-1", StartTime: "08:00", EndTime: "08:45", Type: models.PeriodTypeTheory}},
		},
	}
	require.NoError(t, repo.Upsert(context.Background(), timetable))
	assert.NotEmpty(t, timetable.ID)
	assert.False(t, timetable.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryClear(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetables SET outline_id = NULL, weekly_timetable = '{}', updated_at = $1 WHERE class_id = $2 AND academic_year = $3")).
		WithArgs(sqlmock.AnyArg(), "class-1", "2025/2026").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.Clear(context.Background(), "class-1", "2025/2026"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
