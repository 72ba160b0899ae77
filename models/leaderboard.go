package models

import (
	"time"
)

// LeaderboardCacheEntry is one row of the daily snapshot. All rows for a given
// cache_date are deleted and rewritten on every engine run; past dates are
// immutable history.
type LeaderboardCacheEntry struct {
	ID                    string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID                string    `json:"user_id" gorm:"uniqueIndex:idx_cache_user_date;not null"`
	Username              string    `json:"username"`
	ProfileSlug           string    `json:"profile_slug"`
	GlobalRank            int       `json:"global_rank" gorm:"index"`
	PreviousRank          int       `json:"previous_rank"`
	PerformanceScore      float64   `json:"performance_score"`
	AdjustedScore         float64   `json:"adjusted_score"`
	StreakBonus           float64   `json:"streak_bonus"`
	StreakCount           int       `json:"streak_count"`
	CountryCode           string    `json:"country_code,omitempty" gorm:"type:varchar(2)"`
	BadgeLevel            string    `json:"badge_level" gorm:"type:varchar(16)"`
	LastActivityTimestamp time.Time `json:"last_activity_timestamp"`
	CacheDate             string    `json:"cache_date" gorm:"uniqueIndex:idx_cache_user_date;index;type:varchar(10);not null"`
	CreatedAt             time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// LeaderboardHistoryEntry is the append-only rank time series, upserted on
// (user_id, rank_date) and never deleted by the engine.
type LeaderboardHistoryEntry struct {
	ID               string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID           string    `json:"user_id" gorm:"uniqueIndex:idx_history_user_date;not null"`
	RankDate         string    `json:"rank_date" gorm:"uniqueIndex:idx_history_user_date;type:varchar(10);not null"`
	GlobalRank       int       `json:"global_rank"`
	PerformanceScore float64   `json:"performance_score"`
	AdjustedScore    float64   `json:"adjusted_score"`
	StreakCount      int       `json:"streak_count"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// RankedUser is the in-memory shape the ranking pipeline works on. It never
// touches the database directly.
type RankedUser struct {
	UserScore
	StreakCount   int
	StreakBonus   float64
	AdjustedScore float64
	GlobalRank    int
}
