package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/homehub/homehub-api/internal/models"
)

// ScheduleRepository provides persistence for availability blocks.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = "id, user_id, week_key, day, start_time, end_time, label, all_day, block_date, created_at"

// ListWeek returns all blocks for one user in one week, all-day blocks first
// then ascending start time.
func (r *ScheduleRepository) ListWeek(ctx context.Context, userID int64, weekKey string) ([]models.ScheduleBlock, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_blocks
WHERE user_id = $1 AND week_key = $2
ORDER BY day, all_day DESC, start_time, created_at`, scheduleColumns)
	var blocks []models.ScheduleBlock
	if err := r.db.SelectContext(ctx, &blocks, query, userID, weekKey); err != nil {
		return nil, fmt.Errorf("list week blocks: %w", err)
	}
	return blocks, nil
}

// ListWeekAll returns every member's blocks for one week, grouped stably by
// user then day.
func (r *ScheduleRepository) ListWeekAll(ctx context.Context, weekKey string) ([]models.ScheduleBlock, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedule_blocks
WHERE week_key = $1
ORDER BY user_id, day, all_day DESC, start_time, created_at`, scheduleColumns)
	var blocks []models.ScheduleBlock
	if err := r.db.SelectContext(ctx, &blocks, query, weekKey); err != nil {
		return nil, fmt.Errorf("list week blocks: %w", err)
	}
	return blocks, nil
}

// ReplaceDay swaps the full block set for one (user, week, day) inside a
// single transaction so concurrent writers never observe a partial day.
func (r *ScheduleRepository) ReplaceDay(ctx context.Context, userID int64, weekKey, day string, blocks []models.ScheduleBlock) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace day: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM schedule_blocks WHERE user_id = $1 AND week_key = $2 AND day = $3",
		userID, weekKey, day); err != nil {
		return fmt.Errorf("clear day blocks: %w", err)
	}

	const insert = `INSERT INTO schedule_blocks (id, user_id, week_key, day, start_time, end_time, label, all_day, block_date, created_at)
VALUES (:id, :user_id, :week_key, :day, :start_time, :end_time, :label, :all_day, :block_date, :created_at)`
	now := time.Now().UTC()
	for i := range blocks {
		block := &blocks[i]
		block.UserID = userID
		block.WeekKey = weekKey
		block.Day = day
		if block.ID == "" {
			block.ID = uuid.NewString()
		}
		if block.CreatedAt.IsZero() {
			block.CreatedAt = now
		}
		if _, err := tx.NamedExecContext(ctx, insert, block); err != nil {
			return fmt.Errorf("insert day block: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace day: %w", err)
	}
	return nil
}

// DeleteBlock removes a single block and reports whether a row was removed.
func (r *ScheduleRepository) DeleteBlock(ctx context.Context, userID int64, weekKey, day, blockID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM schedule_blocks WHERE id = $1 AND user_id = $2 AND week_key = $3 AND day = $4",
		blockID, userID, weekKey, day)
	if err != nil {
		return false, fmt.Errorf("delete block: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete block result: %w", err)
	}
	return affected > 0, nil
}
