package models

import (
	"time"
)

// UserScore is the per-user aggregate the ranking engine reads. Rows are
// maintained by session logging; the engine itself never writes this table.
type UserScore struct {
	UserID                string    `json:"user_id" gorm:"primaryKey"`
	AIAccuracyScore       float64   `json:"ai_accuracy_score" gorm:"default:0"`
	CommunicationScore    float64   `json:"communication_score" gorm:"default:0"`
	CompletionRate        float64   `json:"completion_rate" gorm:"default:0"`
	PerformanceScore      float64   `json:"performance_score" gorm:"default:0;index"`
	TotalSessions         int64     `json:"total_sessions" gorm:"default:0"`
	LastActivityTimestamp time.Time `json:"last_activity_timestamp"`
	CountryCode           string    `json:"country_code,omitempty" gorm:"type:varchar(2)"`
	UpdatedAt             time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// SessionLog records one practice day per user. Logging the same day twice
// bumps SessionCount instead of creating a second row.
type SessionLog struct {
	ID                 string    `json:"id" gorm:"primaryKey;type:uuid"`
	UserID             string    `json:"user_id" gorm:"uniqueIndex:idx_session_user_date;not null"`
	SessionDate        string    `json:"session_date" gorm:"uniqueIndex:idx_session_user_date;type:varchar(10);not null"` // YYYY-MM-DD
	AIAccuracyScore    float64   `json:"ai_accuracy_score"`
	CommunicationScore float64   `json:"communication_score"`
	Completed          bool      `json:"completed"`
	SessionCount       int       `json:"session_count" gorm:"default:1"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime"`
}
