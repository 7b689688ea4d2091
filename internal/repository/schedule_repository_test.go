package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homehub/homehub-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestScheduleRepositoryListWeek(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	rows := sqlmock.NewRows([]string{"id", "user_id", "week_key", "day", "start_time", "end_time", "label", "all_day", "block_date", "created_at"}).
		AddRow("b1", int64(5), "2024-W05", models.DayMonday, "", "", "Away", true, nil, time.Now()).
		AddRow("b2", int64(5), "2024-W05", models.DayMonday, "09:00", "17:00", "Work", false, nil, time.Now())
	mock.ExpectQuery("SELECT id, user_id, week_key").
		WithArgs(int64(5), "2024-W05").
		WillReturnRows(rows)

	blocks, err := repo.ListWeek(context.Background(), 5, "2024-W05")
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.True(t, blocks[0].AllDay)
	assert.Equal(t, "Work", blocks[1].Label)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListWeekAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	rows := sqlmock.NewRows([]string{"id", "user_id", "week_key", "day", "start_time", "end_time", "label", "all_day", "block_date", "created_at"}).
		AddRow("b1", int64(1), "2024-W05", models.DayMonday, "09:00", "17:00", "Work", false, nil, time.Now()).
		AddRow("b2", int64(2), "2024-W05", models.DayTuesday, "08:00", "12:00", "Gym", false, nil, time.Now())
	mock.ExpectQuery("SELECT id, user_id, week_key").
		WithArgs("2024-W05").
		WillReturnRows(rows)

	blocks, err := repo.ListWeekAll(context.Background(), "2024-W05")
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, int64(1), blocks[0].UserID)
	assert.Equal(t, int64(2), blocks[1].UserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryReplaceDayCommits(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM schedule_blocks").
		WithArgs(int64(5), "2024-W05", models.DayMonday).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO schedule_blocks").
		WithArgs(sqlmock.AnyArg(), int64(5), "2024-W05", models.DayMonday, "09:00", "17:00", "Work", false, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	blocks := []models.ScheduleBlock{{StartTime: "09:00", EndTime: "17:00", Label: "Work"}}
	require.NoError(t, repo.ReplaceDay(context.Background(), 5, "2024-W05", models.DayMonday, blocks))
	assert.NotEmpty(t, blocks[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryReplaceDayRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM schedule_blocks").
		WithArgs(int64(5), "2024-W05", models.DayMonday).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO schedule_blocks").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	blocks := []models.ScheduleBlock{{StartTime: "09:00", EndTime: "17:00", Label: "Work"}}
	err := repo.ReplaceDay(context.Background(), 5, "2024-W05", models.DayMonday, blocks)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteBlock(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewScheduleRepository(db)
	mock.ExpectExec("DELETE FROM schedule_blocks WHERE id").
		WithArgs("b1", int64(5), "2024-W05", models.DayMonday).
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.DeleteBlock(context.Background(), 5, "2024-W05", models.DayMonday, "b1")
	require.NoError(t, err)
	assert.True(t, deleted)

	mock.ExpectExec("DELETE FROM schedule_blocks WHERE id").
		WithArgs("b1", int64(5), "2024-W05", models.DayMonday).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err = repo.DeleteBlock(context.Background(), 5, "2024-W05", models.DayMonday, "b1")
	require.NoError(t, err)
	assert.False(t, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
