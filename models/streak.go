package models

import (
	"time"
)

// UserStreak tracks consecutive practice days. A missing row means streak 0 —
// the ranking engine treats absence as "no bonus", never as an error.
type UserStreak struct {
	UserID         string     `json:"user_id" gorm:"primaryKey"`
	StreakCount    int        `json:"streak_count" gorm:"default:0"`
	LongestStreak  int        `json:"longest_streak" gorm:"default:0"`
	TotalSessions  int64      `json:"total_sessions" gorm:"default:0"`
	LastActiveDate string     `json:"last_active_date,omitempty" gorm:"type:varchar(10)"` // YYYY-MM-DD, empty if never active
	StreakFrozen   bool       `json:"streak_frozen" gorm:"default:false"`
	FreezeUsedDate *time.Time `json:"freeze_used_date,omitempty"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}
