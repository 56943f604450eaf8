package model

import (
	"time"
)

// 生成记录状态：PENDING 为初始态，COMPLETED / FAILED 为终态，不可再变更
const (
	GenerationStatusPending   = "PENDING"
	GenerationStatusCompleted = "COMPLETED"
	GenerationStatusFailed    = "FAILED"
)

// 生成类型
const (
	GenerationKindText2Image  = "t2i"
	GenerationKindImage2Image = "i2i"
)

type Generation struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"not null;index" json:"user_id"`
	Kind      string    `gorm:"size:10;not null;default:t2i" json:"kind"`
	Prompt    string    `gorm:"type:text;not null" json:"prompt"`
	ModelID   string    `gorm:"size:100;not null" json:"model_id"`
	Ratio     string    `gorm:"size:10;not null" json:"ratio"`
	Style     string    `gorm:"size:50" json:"style"`
	Cost      int       `gorm:"not null" json:"cost"`
	Status    string    `gorm:"size:20;not null;default:PENDING;index" json:"status"`
	ImageURL  string    `gorm:"size:2000" json:"image_url,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Generation) TableName() string {
	return "generations"
}
