package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/homehub/homehub-api/internal/models"
	"github.com/homehub/homehub-api/internal/week"
	appErrors "github.com/homehub/homehub-api/pkg/errors"
)

type scheduleRepository interface {
	ListWeek(ctx context.Context, userID int64, weekKey string) ([]models.ScheduleBlock, error)
	ListWeekAll(ctx context.Context, weekKey string) ([]models.ScheduleBlock, error)
	ReplaceDay(ctx context.Context, userID int64, weekKey, day string, blocks []models.ScheduleBlock) error
	DeleteBlock(ctx context.Context, userID int64, weekKey, day, blockID string) (bool, error)
}

// memberDirectory supplies the household member set so whole-week views can
// include members without any blocks.
type memberDirectory interface {
	List(ctx context.Context) ([]models.User, error)
}

// ReplaceDayRequest describes the payload for replacing a day's blocks.
type ReplaceDayRequest struct {
	WeekKey string             `json:"week_key" validate:"required"`
	Blocks  []models.TimeBlock `json:"blocks"`
}

// ScheduleService coordinates weekly availability logic.
type ScheduleService struct {
	repo      scheduleRepository
	users     memberDirectory
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService instantiates ScheduleService. The member directory is
// optional; without it whole-week views only cover members with blocks.
func NewScheduleService(repo scheduleRepository, users memberDirectory, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, users: users, validator: validate, logger: logger}
}

// GetWeek returns the seven-day block map for one user and week. Days without
// blocks are present with empty slices.
func (s *ScheduleService) GetWeek(ctx context.Context, userID int64, weekKey string) (models.UserSchedule, error) {
	if _, _, err := week.ParseKey(weekKey); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid week key")
	}
	blocks, err := s.repo.ListWeek(ctx, userID, weekKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week schedule")
	}

	schedule := emptySchedule()
	for _, block := range blocks {
		schedule[block.Day] = append(schedule[block.Day], block)
	}
	return schedule, nil
}

// GetWeekForAll returns every member's schedule for one week. Members without
// blocks still appear, each with seven empty days.
func (s *ScheduleService) GetWeekForAll(ctx context.Context, weekKey string) (models.WeekSchedules, error) {
	if _, _, err := week.ParseKey(weekKey); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid week key")
	}
	blocks, err := s.repo.ListWeekAll(ctx, weekKey)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load week schedules")
	}

	schedules := models.WeekSchedules{}
	if s.users != nil {
		users, err := s.users.List(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list members")
		}
		for _, user := range users {
			schedules[user.ID] = emptySchedule()
		}
	}
	for _, block := range blocks {
		if schedules[block.UserID] == nil {
			schedules[block.UserID] = emptySchedule()
		}
		schedules[block.UserID][block.Day] = append(schedules[block.UserID][block.Day], block)
	}
	return schedules, nil
}

func emptySchedule() models.UserSchedule {
	schedule := models.UserSchedule{}
	for _, day := range models.Weekdays() {
		schedule[day] = []models.ScheduleBlock{}
	}
	return schedule
}

// ReplaceDay atomically swaps all blocks for one (user, week, day) after
// validating block shape and mutual non-overlap. On any validation failure
// the stored state is untouched.
func (s *ScheduleService) ReplaceDay(ctx context.Context, userID int64, weekKey, day string, blocks []models.TimeBlock) (models.UserSchedule, error) {
	day = strings.ToUpper(day)
	if !models.IsWeekday(day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", day))
	}
	if _, _, err := week.ParseKey(weekKey); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid week key")
	}
	if err := validateBlocks(blocks); err != nil {
		return nil, err
	}

	rows := make([]models.ScheduleBlock, 0, len(blocks))
	for _, block := range blocks {
		row := models.ScheduleBlock{
			ID:        block.ID,
			StartTime: block.StartTime,
			EndTime:   block.EndTime,
			Label:     strings.TrimSpace(block.Label),
			AllDay:    block.AllDay,
		}
		if block.AllDay {
			row.StartTime = ""
			row.EndTime = ""
		}
		rows = append(rows, row)
	}

	if err := s.repo.ReplaceDay(ctx, userID, weekKey, day, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to replace day blocks")
	}

	s.logger.Info("day_replaced",
		zap.Int64("user_id", userID),
		zap.String("week_key", weekKey),
		zap.String("day", day),
		zap.Int("blocks", len(rows)),
	)
	return s.GetWeek(ctx, userID, weekKey)
}

// DeleteBlock removes one block. A missing block is a normal outcome and
// reports false.
func (s *ScheduleService) DeleteBlock(ctx context.Context, userID int64, weekKey, day, blockID string) (bool, error) {
	day = strings.ToUpper(day)
	if !models.IsWeekday(day) {
		return false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day %q", day))
	}
	if blockID == "" {
		return false, appErrors.Clone(appErrors.ErrValidation, "block id is required")
	}
	deleted, err := s.repo.DeleteBlock(ctx, userID, weekKey, day, blockID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete block")
	}
	return deleted, nil
}

// validateBlocks enforces block shape and pairwise non-overlap. Intervals are
// half-open [start, end); all-day blocks are exempt from time checks.
func validateBlocks(blocks []models.TimeBlock) error {
	type interval struct {
		start, end int
		label      string
	}
	intervals := make([]interval, 0, len(blocks))

	for i, block := range blocks {
		if block.AllDay {
			continue
		}
		start, err := clockMinutes(block.StartTime)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("block %d: invalid start time %q", i, block.StartTime))
		}
		end, err := clockMinutes(block.EndTime)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("block %d: invalid end time %q", i, block.EndTime))
		}
		if start >= end {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("block %d: start time must be before end time", i))
		}
		intervals = append(intervals, interval{start: start, end: end, label: block.Label})
	}

	for i := 0; i < len(intervals); i++ {
		for j := i + 1; j < len(intervals); j++ {
			if intervals[i].start < intervals[j].end && intervals[j].start < intervals[i].end {
				return appErrors.Clone(appErrors.ErrValidation,
					fmt.Sprintf("blocks %q and %q overlap", intervals[i].label, intervals[j].label))
			}
		}
	}
	return nil
}

// clockMinutes parses an "HH:MM" wall-clock string into minutes since midnight.
func clockMinutes(raw string) (int, error) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
