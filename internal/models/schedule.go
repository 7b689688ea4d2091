package models

import "time"

// Weekday names used as schedule day keys, uppercased in storage and payloads.
const (
	DayMonday    = "MONDAY"
	DayTuesday   = "TUESDAY"
	DayWednesday = "WEDNESDAY"
	DayThursday  = "THURSDAY"
	DayFriday    = "FRIDAY"
	DaySaturday  = "SATURDAY"
	DaySunday    = "SUNDAY"
)

// Weekdays returns the seven day keys in week order (Monday first).
func Weekdays() []string {
	return []string{DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday, DaySaturday, DaySunday}
}

// IsWeekday reports whether day is one of the seven known day keys.
func IsWeekday(day string) bool {
	switch day {
	case DayMonday, DayTuesday, DayWednesday, DayThursday, DayFriday, DaySaturday, DaySunday:
		return true
	}
	return false
}

// ScheduleBlock represents a persisted availability block row. A block belongs
// to exactly one (user, week, day). Times are "HH:MM" strings and are ignored
// when AllDay is set.
type ScheduleBlock struct {
	ID        string     `db:"id" json:"id"`
	UserID    int64      `db:"user_id" json:"user_id"`
	WeekKey   string     `db:"week_key" json:"week_key"`
	Day       string     `db:"day" json:"day"`
	StartTime string     `db:"start_time" json:"start_time"`
	EndTime   string     `db:"end_time" json:"end_time"`
	Label     string     `db:"label" json:"label"`
	AllDay    bool       `db:"all_day" json:"all_day"`
	BlockDate *time.Time `db:"block_date" json:"block_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// TimeBlock is the incoming payload form of a block before it is persisted.
type TimeBlock struct {
	ID        string `json:"id,omitempty"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Label     string `json:"label"`
	AllDay    bool   `json:"all_day"`
}

// UserSchedule maps each of the seven day keys to that day's ordered blocks
// for one user in one week. Days without blocks carry empty slices, never nil.
type UserSchedule map[string][]ScheduleBlock

// WeekSchedules maps user id to that user's schedule for one week.
type WeekSchedules map[int64]UserSchedule
