package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homehub/homehub-api/internal/models"
	"github.com/homehub/homehub-api/internal/service"
)

type scheduleRepoFake struct {
	blocks []models.ScheduleBlock
}

func (f *scheduleRepoFake) ListWeek(ctx context.Context, userID int64, weekKey string) ([]models.ScheduleBlock, error) {
	var result []models.ScheduleBlock
	for _, b := range f.blocks {
		if b.UserID == userID && b.WeekKey == weekKey {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *scheduleRepoFake) ListWeekAll(ctx context.Context, weekKey string) ([]models.ScheduleBlock, error) {
	var result []models.ScheduleBlock
	for _, b := range f.blocks {
		if b.WeekKey == weekKey {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *scheduleRepoFake) ReplaceDay(ctx context.Context, userID int64, weekKey, day string, blocks []models.ScheduleBlock) error {
	kept := f.blocks[:0]
	for _, b := range f.blocks {
		if !(b.UserID == userID && b.WeekKey == weekKey && b.Day == day) {
			kept = append(kept, b)
		}
	}
	f.blocks = kept
	for _, b := range blocks {
		b.UserID = userID
		b.WeekKey = weekKey
		b.Day = day
		f.blocks = append(f.blocks, b)
	}
	return nil
}

func (f *scheduleRepoFake) DeleteBlock(ctx context.Context, userID int64, weekKey, day, blockID string) (bool, error) {
	for i, b := range f.blocks {
		if b.UserID == userID && b.WeekKey == weekKey && b.Day == day && b.ID == blockID {
			f.blocks = append(f.blocks[:i], f.blocks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func newScheduleTestHandler(repo *scheduleRepoFake) *ScheduleHandler {
	return NewScheduleHandler(service.NewScheduleService(repo, nil, nil, nil))
}

func TestScheduleHandlerGetWeekInvalidUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleTestHandler(&scheduleRepoFake{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/schedules/abc", nil)
	c.Params = gin.Params{{Key: "userId", Value: "abc"}}

	handler.GetWeek(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerReplaceDay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleTestHandler(&scheduleRepoFake{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPut, "/schedules/5/days/monday", gin.H{
		"week_key": "2024-W05",
		"blocks":   []gin.H{{"start_time": "09:00", "end_time": "17:00", "label": "Work"}},
	})
	c.Params = gin.Params{{Key: "userId", Value: "5"}, {Key: "day", Value: "monday"}}

	handler.ReplaceDay(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data map[string][]models.ScheduleBlock `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data[models.DayMonday], 1)
	assert.Equal(t, "Work", envelope.Data[models.DayMonday][0].Label)
	assert.Empty(t, envelope.Data[models.DayTuesday])
}

func TestScheduleHandlerReplaceDayOverlapRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleTestHandler(&scheduleRepoFake{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(t, http.MethodPut, "/schedules/5/days/monday", gin.H{
		"week_key": "2024-W05",
		"blocks": []gin.H{
			{"start_time": "09:00", "end_time": "10:00", "label": "A"},
			{"start_time": "09:30", "end_time": "11:00", "label": "B"},
		},
	})
	c.Params = gin.Params{{Key: "userId", Value: "5"}, {Key: "day", Value: "monday"}}

	handler.ReplaceDay(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerDeleteBlockRequiresWeek(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleTestHandler(&scheduleRepoFake{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/schedules/5/days/monday/blocks/b1", nil)
	c.Params = gin.Params{{Key: "userId", Value: "5"}, {Key: "day", Value: "monday"}, {Key: "blockId", Value: "b1"}}

	handler.DeleteBlock(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerDeleteBlock(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &scheduleRepoFake{blocks: []models.ScheduleBlock{
		{ID: "b1", UserID: 5, WeekKey: "2024-W05", Day: models.DayMonday},
	}}
	handler := newScheduleTestHandler(repo)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/schedules/5/days/monday/blocks/b1?week=2024-W05", nil)
	c.Params = gin.Params{{Key: "userId", Value: "5"}, {Key: "day", Value: "monday"}, {Key: "blockId", Value: "b1"}}

	handler.DeleteBlock(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Deleted bool `json:"deleted"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.True(t, envelope.Data.Deleted)
	assert.Empty(t, repo.blocks)
}
