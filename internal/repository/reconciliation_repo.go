package repository

import (
	"gorm.io/gorm"

	"github.com/pixelmuse/imagen_go_server/internal/model"
)

type ReconciliationRepository struct {
	db *gorm.DB
}

func NewReconciliationRepository(db *gorm.DB) *ReconciliationRepository {
	return &ReconciliationRepository{db: db}
}

func (r *ReconciliationRepository) Create(task *model.ReconciliationTask) error {
	return r.db.Create(task).Error
}

func (r *ReconciliationRepository) GetPending(limit int) ([]*model.ReconciliationTask, error) {
	var tasks []*model.ReconciliationTask
	err := r.db.Where("status = ?", model.ReconciliationStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

func (r *ReconciliationRepository) MarkDone(id int64) error {
	return r.db.Model(&model.ReconciliationTask{}).Where("id = ?", id).
		Update("status", model.ReconciliationStatusDone).Error
}

func (r *ReconciliationRepository) IncrementRetry(id int64, lastErr string) error {
	return r.db.Model(&model.ReconciliationTask{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"retry_count": gorm.Expr("retry_count + 1"),
			"last_error":  lastErr,
		}).Error
}

func (r *ReconciliationRepository) MarkFailed(id int64, lastErr string) error {
	return r.db.Model(&model.ReconciliationTask{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      model.ReconciliationStatusFailed,
			"retry_count": gorm.Expr("retry_count + 1"),
			"last_error":  lastErr,
		}).Error
}
