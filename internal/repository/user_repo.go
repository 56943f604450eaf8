package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/pixelmuse/imagen_go_server/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepository) GetByID(id int64) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByGithubID(githubID string) (*model.User, error) {
	var user model.User
	err := r.db.Where("github_id = ?", githubID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(user *model.User) error {
	return r.db.Save(user).Error
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&model.User{}).Where("id = ?", id).Updates(fields).Error
}

// DebitCredits 条件扣减：余额不足时不产生任何写入，返回 false。
// 并发请求同时通过余额检查时，由这条带条件的 UPDATE 保证不会扣成负数。
func (r *UserRepository) DebitCredits(tx *gorm.DB, id int64, amount int) (bool, error) {
	if tx == nil {
		tx = r.db
	}
	res := tx.Model(&model.User{}).
		Where("id = ? AND credits >= ?", id, amount).
		Update("credits", gorm.Expr("credits - ?", amount))
	return res.RowsAffected > 0, res.Error
}

// AddCredits 增加积分（退款、充值共用）
func (r *UserRepository) AddCredits(tx *gorm.DB, id int64, amount int) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&model.User{}).Where("id = ?", id).
		Update("credits", gorm.Expr("credits + ?", amount)).Error
}

// GrantDailyReward 每日奖励。条件更新以存储的日历日期做 CAS：
// 同一自然日内并发调用只有一条生效，不会重复发放。
func (r *UserRepository) GrantDailyReward(id int64, now time.Time, amount int) (bool, error) {
	res := r.db.Model(&model.User{}).
		Where("id = ? AND (last_daily_reward_at IS NULL OR date(last_daily_reward_at) <> date(?))", id, now).
		Updates(map[string]interface{}{
			"credits":              gorm.Expr("credits + ?", amount),
			"last_daily_reward_at": now,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *UserRepository) ExistsByEmail(email string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) ExistsByUsername(username string) (bool, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}
