package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/pixelmuse/imagen_go_server/internal/model"
)

// TestUser 创建测试用户
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	email := fmt.Sprintf("test_%d@example.com", time.Now().UnixNano())
	passwordHash := "$2a$10$abcdefghijklmnopqrstuvwxyz123456" // bcrypt hash placeholder
	user := &model.User{
		Username:     fmt.Sprintf("testuser_%d", time.Now().UnixNano()%100000),
		Email:        &email,
		PasswordHash: &passwordHash,
		Credits:      100,
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithUsername 设置用户名
func WithUsername(username string) func(*model.User) {
	return func(u *model.User) {
		u.Username = username
	}
}

// WithEmail 设置邮箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// WithCredits 设置积分余额
func WithCredits(credits int) func(*model.User) {
	return func(u *model.User) {
		u.Credits = credits
	}
}

// WithGithubID 设置 GitHub 绑定
func WithGithubID(githubID string) func(*model.User) {
	return func(u *model.User) {
		u.GithubID = &githubID
	}
}

// WithLastDailyReward 设置上次签到时间
func WithLastDailyReward(at time.Time) func(*model.User) {
	return func(u *model.User) {
		u.LastDailyRewardAt = &at
	}
}

// TestGeneration 创建测试生成记录
func TestGeneration(t *testing.T, db *gorm.DB, userID int64, opts ...func(*model.Generation)) *model.Generation {
	t.Helper()

	gen := &model.Generation{
		UserID:  userID,
		Kind:    model.GenerationKindText2Image,
		Prompt:  fmt.Sprintf("test prompt %d", time.Now().UnixNano()%100000),
		ModelID: "black-forest-labs/flux.2-flex",
		Ratio:   "1:1",
		Style:   "none",
		Cost:    6,
		Status:  model.GenerationStatusPending,
	}

	for _, opt := range opts {
		opt(gen)
	}

	if err := db.Create(gen).Error; err != nil {
		t.Fatalf("Failed to create test generation: %v", err)
	}

	return gen
}

// WithGenerationStatus 设置生成状态
func WithGenerationStatus(status string) func(*model.Generation) {
	return func(g *model.Generation) {
		g.Status = status
	}
}

// WithKind 设置生成类型
func WithKind(kind string) func(*model.Generation) {
	return func(g *model.Generation) {
		g.Kind = kind
	}
}

// WithCost 设置消耗积分
func WithCost(cost int) func(*model.Generation) {
	return func(g *model.Generation) {
		g.Cost = cost
	}
}

// WithImageURL 设置结果图片地址
func WithImageURL(url string) func(*model.Generation) {
	return func(g *model.Generation) {
		g.ImageURL = url
	}
}

// TestReconciliationTask 创建测试对账任务
func TestReconciliationTask(t *testing.T, db *gorm.DB, userID, generationID int64, credits int) *model.ReconciliationTask {
	t.Helper()

	task := &model.ReconciliationTask{
		TaskKey:      fmt.Sprintf("task_%d", time.Now().UnixNano()),
		UserID:       userID,
		GenerationID: generationID,
		Credits:      credits,
		Status:       model.ReconciliationStatusPending,
	}

	if err := db.Create(task).Error; err != nil {
		t.Fatalf("Failed to create test reconciliation task: %v", err)
	}

	return task
}

// TestPurchase 创建测试充值记录
func TestPurchase(t *testing.T, db *gorm.DB, userID int64, orderID string, credits int) *model.CreditPurchase {
	t.Helper()

	purchase := &model.CreditPurchase{
		UserID:          userID,
		ProviderOrderID: orderID,
		PackageID:       "starter",
		Amount:          "5.00",
		Credits:         credits,
	}

	if err := db.Create(purchase).Error; err != nil {
		t.Fatalf("Failed to create test purchase: %v", err)
	}

	return purchase
}
