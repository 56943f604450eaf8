package model

import (
	"time"
)

const (
	ReconciliationStatusPending = "PENDING"
	ReconciliationStatusDone    = "DONE"
	ReconciliationStatusFailed  = "FAILED"
)

// ReconciliationTask 补偿任务（outbox）。
// 生成失败后「标记 FAILED + 退积分」这对写入如果也失败了，不能把错误直接丢弃，
// 而是落一条任务，由后台定时任务重放补偿，直到账面和记录重新一致。
type ReconciliationTask struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	TaskKey      string    `gorm:"size:64;uniqueIndex;not null" json:"task_key"`
	UserID       int64     `gorm:"not null;index" json:"user_id"`
	GenerationID int64     `gorm:"not null;index" json:"generation_id"`
	Credits      int       `gorm:"not null" json:"credits"`
	Status       string    `gorm:"size:20;index;not null;default:PENDING" json:"status"`
	RetryCount   int       `gorm:"not null;default:0" json:"retry_count"`
	LastError    string    `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (ReconciliationTask) TableName() string {
	return "reconciliation_tasks"
}
