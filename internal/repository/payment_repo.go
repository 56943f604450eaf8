package repository

import (
	"gorm.io/gorm"

	"github.com/pixelmuse/imagen_go_server/internal/model"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(tx *gorm.DB, purchase *model.CreditPurchase) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(purchase).Error
}

func (r *PaymentRepository) GetByProviderOrderID(orderID string) (*model.CreditPurchase, error) {
	var purchase model.CreditPurchase
	err := r.db.Where("provider_order_id = ?", orderID).First(&purchase).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *PaymentRepository) ListByUserID(userID int64, limit int) ([]*model.CreditPurchase, error) {
	var purchases []*model.CreditPurchase
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&purchases).Error
	return purchases, err
}
