package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homehub/homehub-api/internal/models"
	appErrors "github.com/homehub/homehub-api/pkg/errors"
)

type scheduleRepoStub struct {
	blocks []models.ScheduleBlock
	err    error
}

func (s *scheduleRepoStub) ListWeek(ctx context.Context, userID int64, weekKey string) ([]models.ScheduleBlock, error) {
	if s.err != nil {
		return nil, s.err
	}
	var result []models.ScheduleBlock
	for _, b := range s.blocks {
		if b.UserID == userID && b.WeekKey == weekKey {
			result = append(result, b)
		}
	}
	return result, nil
}

func (s *scheduleRepoStub) ListWeekAll(ctx context.Context, weekKey string) ([]models.ScheduleBlock, error) {
	if s.err != nil {
		return nil, s.err
	}
	var result []models.ScheduleBlock
	for _, b := range s.blocks {
		if b.WeekKey == weekKey {
			result = append(result, b)
		}
	}
	return result, nil
}

func (s *scheduleRepoStub) ReplaceDay(ctx context.Context, userID int64, weekKey, day string, blocks []models.ScheduleBlock) error {
	if s.err != nil {
		return s.err
	}
	kept := s.blocks[:0]
	for _, b := range s.blocks {
		if !(b.UserID == userID && b.WeekKey == weekKey && b.Day == day) {
			kept = append(kept, b)
		}
	}
	s.blocks = kept
	for _, b := range blocks {
		b.UserID = userID
		b.WeekKey = weekKey
		b.Day = day
		s.blocks = append(s.blocks, b)
	}
	return nil
}

func (s *scheduleRepoStub) DeleteBlock(ctx context.Context, userID int64, weekKey, day, blockID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	for i, b := range s.blocks {
		if b.UserID == userID && b.WeekKey == weekKey && b.Day == day && b.ID == blockID {
			s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func TestScheduleServiceGetWeekEmptyDaysPresent(t *testing.T) {
	svc := NewScheduleService(&scheduleRepoStub{}, nil, nil, nil)
	schedule, err := svc.GetWeek(context.Background(), 5, "2024-W05")
	require.NoError(t, err)
	require.Len(t, schedule, 7)
	for _, day := range models.Weekdays() {
		blocks, ok := schedule[day]
		require.True(t, ok, "day %s missing", day)
		assert.NotNil(t, blocks)
		assert.Empty(t, blocks)
	}
}

func TestScheduleServiceGetWeekInvalidKey(t *testing.T) {
	svc := NewScheduleService(&scheduleRepoStub{}, nil, nil, nil)
	_, err := svc.GetWeek(context.Background(), 5, "not-a-week")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceReplaceDayRoundTrip(t *testing.T) {
	repo := &scheduleRepoStub{}
	svc := NewScheduleService(repo, nil, nil, nil)

	blocks := []models.TimeBlock{
		{StartTime: "09:00", EndTime: "17:00", Label: "Work"},
	}
	schedule, err := svc.ReplaceDay(context.Background(), 5, "2024-W05", "monday", blocks)
	require.NoError(t, err)
	require.Len(t, schedule[models.DayMonday], 1)
	assert.Equal(t, "Work", schedule[models.DayMonday][0].Label)

	// A second replace fully supersedes the first.
	schedule, err = svc.ReplaceDay(context.Background(), 5, "2024-W05", "MONDAY", []models.TimeBlock{
		{StartTime: "08:00", EndTime: "12:00", Label: "Gym"},
		{StartTime: "13:00", EndTime: "18:00", Label: "Work"},
	})
	require.NoError(t, err)
	require.Len(t, schedule[models.DayMonday], 2)
	assert.Equal(t, "Gym", schedule[models.DayMonday][0].Label)
	assert.Equal(t, "Work", schedule[models.DayMonday][1].Label)
}

func TestScheduleServiceReplaceDayOverlapRejected(t *testing.T) {
	repo := &scheduleRepoStub{}
	svc := NewScheduleService(repo, nil, nil, nil)

	_, err := svc.ReplaceDay(context.Background(), 5, "2024-W05", "MONDAY", []models.TimeBlock{
		{StartTime: "09:00", EndTime: "17:00", Label: "Work"},
	})
	require.NoError(t, err)

	_, err = svc.ReplaceDay(context.Background(), 5, "2024-W05", "MONDAY", []models.TimeBlock{
		{StartTime: "09:00", EndTime: "10:00", Label: "A"},
		{StartTime: "09:30", EndTime: "11:00", Label: "B"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	// Prior state untouched.
	schedule, err := svc.GetWeek(context.Background(), 5, "2024-W05")
	require.NoError(t, err)
	require.Len(t, schedule[models.DayMonday], 1)
	assert.Equal(t, "Work", schedule[models.DayMonday][0].Label)
}

func TestScheduleServiceReplaceDayAdjacentBlocksAllowed(t *testing.T) {
	svc := NewScheduleService(&scheduleRepoStub{}, nil, nil, nil)
	// Half-open intervals: [09:00,10:00) and [10:00,11:00) do not overlap.
	_, err := svc.ReplaceDay(context.Background(), 5, "2024-W05", "MONDAY", []models.TimeBlock{
		{StartTime: "09:00", EndTime: "10:00", Label: "A"},
		{StartTime: "10:00", EndTime: "11:00", Label: "B"},
	})
	require.NoError(t, err)
}

func TestScheduleServiceReplaceDayAllDaySkipsOverlap(t *testing.T) {
	svc := NewScheduleService(&scheduleRepoStub{}, nil, nil, nil)
	schedule, err := svc.ReplaceDay(context.Background(), 5, "2024-W05", "MONDAY", []models.TimeBlock{
		{AllDay: true, Label: "Away"},
		{StartTime: "09:00", EndTime: "17:00", Label: "Work"},
	})
	require.NoError(t, err)
	require.Len(t, schedule[models.DayMonday], 2)
}

func TestScheduleServiceReplaceDayMalformedBlocks(t *testing.T) {
	svc := NewScheduleService(&scheduleRepoStub{}, nil, nil, nil)
	cases := []struct {
		name   string
		blocks []models.TimeBlock
	}{
		{"bad start", []models.TimeBlock{{StartTime: "9am", EndTime: "10:00"}}},
		{"bad end", []models.TimeBlock{{StartTime: "09:00", EndTime: "25:00"}}},
		{"start after end", []models.TimeBlock{{StartTime: "12:00", EndTime: "09:00"}}},
		{"zero length", []models.TimeBlock{{StartTime: "09:00", EndTime: "09:00"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ReplaceDay(context.Background(), 5, "2024-W05", "MONDAY", tc.blocks)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestScheduleServiceReplaceDayUnknownDay(t *testing.T) {
	svc := NewScheduleService(&scheduleRepoStub{}, nil, nil, nil)
	_, err := svc.ReplaceDay(context.Background(), 5, "2024-W05", "FUNDAY", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

type memberDirectoryStub struct {
	users []models.User
}

func (s *memberDirectoryStub) List(ctx context.Context) ([]models.User, error) {
	return s.users, nil
}

func TestScheduleServiceGetWeekForAllIncludesEveryMember(t *testing.T) {
	repo := &scheduleRepoStub{blocks: []models.ScheduleBlock{
		{ID: "b1", UserID: 1, WeekKey: "2024-W05", Day: models.DayMonday, StartTime: "09:00", EndTime: "17:00", Label: "Work"},
	}}
	users := &memberDirectoryStub{users: []models.User{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Ben"}}}
	svc := NewScheduleService(repo, users, nil, nil)

	schedules, err := svc.GetWeekForAll(context.Background(), "2024-W05")
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	require.Len(t, schedules[1][models.DayMonday], 1)
	assert.Equal(t, "Work", schedules[1][models.DayMonday][0].Label)
	assert.Empty(t, schedules[2][models.DayMonday])
}

func TestScheduleServiceDeleteBlock(t *testing.T) {
	repo := &scheduleRepoStub{blocks: []models.ScheduleBlock{
		{ID: "b1", UserID: 5, WeekKey: "2024-W05", Day: models.DayMonday},
	}}
	svc := NewScheduleService(repo, nil, nil, nil)

	deleted, err := svc.DeleteBlock(context.Background(), 5, "2024-W05", "MONDAY", "b1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = svc.DeleteBlock(context.Background(), 5, "2024-W05", "MONDAY", "b1")
	require.NoError(t, err)
	assert.False(t, deleted)
}
