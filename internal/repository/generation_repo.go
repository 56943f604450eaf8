package repository

import (
	"gorm.io/gorm"

	"github.com/pixelmuse/imagen_go_server/internal/model"
)

type GenerationRepository struct {
	db *gorm.DB
}

func NewGenerationRepository(db *gorm.DB) *GenerationRepository {
	return &GenerationRepository{db: db}
}

func (r *GenerationRepository) Create(tx *gorm.DB, gen *model.Generation) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Create(gen).Error
}

func (r *GenerationRepository) GetByID(id int64) (*model.Generation, error) {
	var gen model.Generation
	err := r.db.Where("id = ?", id).First(&gen).Error
	if err != nil {
		return nil, err
	}
	return &gen, nil
}

// MarkCompleted 置为终态 COMPLETED 并写入结果 URL，仅对仍处于 PENDING 的记录生效
func (r *GenerationRepository) MarkCompleted(id int64, imageURL string) error {
	return r.db.Model(&model.Generation{}).
		Where("id = ? AND status = ?", id, model.GenerationStatusPending).
		Updates(map[string]interface{}{
			"status":    model.GenerationStatusCompleted,
			"image_url": imageURL,
		}).Error
}

// MarkFailedIfPending 置为终态 FAILED。返回是否真的发生了状态变更，
// 补偿逻辑据此决定要不要退积分（终态只会进入一次，退款也只会发生一次）。
func (r *GenerationRepository) MarkFailedIfPending(tx *gorm.DB, id int64) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	res := tx.Model(&model.Generation{}).
		Where("id = ? AND status = ?", id, model.GenerationStatusPending).
		Update("status", model.GenerationStatusFailed)
	return res.RowsAffected > 0, res.Error
}

// ListRecentByUserID 按创建时间倒序取最近 limit 条
func (r *GenerationRepository) ListRecentByUserID(userID int64, limit int) ([]*model.Generation, error) {
	var gens []*model.Generation
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&gens).Error
	return gens, err
}

func (r *GenerationRepository) CountByUserID(userID int64) (int64, error) {
	var count int64
	err := r.db.Model(&model.Generation{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
