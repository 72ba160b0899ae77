package models

import (
	"time"
)

// Profile mirrors the profile service so cache rows can carry a real username
// instead of a placeholder. Rows are upserted by the profile sync worker.
type Profile struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid"`
	ExternalUserID string    `json:"external_user_id" gorm:"uniqueIndex;not null"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty" gorm:"type:text"`
	CountryCode    string    `json:"country_code,omitempty" gorm:"type:varchar(2)"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
