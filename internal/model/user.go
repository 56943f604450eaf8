package model

import (
	"time"
)

type User struct {
	ID                int64      `gorm:"primaryKey" json:"id"`
	Username          string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email             *string    `gorm:"size:100;uniqueIndex" json:"email,omitempty"`
	PasswordHash      *string    `gorm:"size:255" json:"-"`
	AvatarURL         string     `gorm:"size:500" json:"avatar_url"`
	GithubID          *string    `gorm:"column:github_id;size:50;uniqueIndex" json:"-"`
	Credits           int        `gorm:"default:0" json:"credits"`
	LastDailyRewardAt *time.Time `json:"last_daily_reward_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
