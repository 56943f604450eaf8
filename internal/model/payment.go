package model

import (
	"time"
)

// CreditPurchase 一次成功的支付捕获对应的积分入账流水。
// ProviderOrderID 唯一约束用于去重：同一笔支付回调两次只入账一次。
type CreditPurchase struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	UserID          int64     `gorm:"not null;index" json:"user_id"`
	ProviderOrderID string    `gorm:"size:100;uniqueIndex;not null" json:"provider_order_id"`
	PackageID       string    `gorm:"size:50;not null" json:"package_id"`
	Amount          string    `gorm:"size:20;not null" json:"amount"`
	Credits         int       `gorm:"not null" json:"credits"`
	CreatedAt       time.Time `json:"created_at"`
}

func (CreditPurchase) TableName() string {
	return "credit_purchases"
}
