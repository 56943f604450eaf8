package service

import (
	"errors"
	"time"

	"github.com/pixelmuse/imagen_go_server/config"
	"github.com/pixelmuse/imagen_go_server/internal/model/dto"
	"github.com/pixelmuse/imagen_go_server/internal/repository"
)

var ErrInsufficientCredits = errors.New("积分不足")

// CreditService 积分账本。余额、每日奖励、充值入账；
// 扣减发生在生成的预留事务里（见 GenerationService）。
type CreditService struct {
	userRepo *repository.UserRepository
	cfg      *config.Config
}

func NewCreditService(userRepo *repository.UserRepository, cfg *config.Config) *CreditService {
	return &CreditService{
		userRepo: userRepo,
		cfg:      cfg,
	}
}

// GetBalance 查询余额。读取前先做每日奖励检查，返回值里已体现当天的奖励。
func (s *CreditService) GetBalance(userID int64) (*dto.BalanceResponse, error) {
	rewarded, err := s.GrantDailyRewardIfDue(userID, time.Now())
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.BalanceResponse{
		Credits:       user.Credits,
		DailyRewarded: rewarded,
	}
	if rewarded {
		resp.RewardAmount = s.cfg.Credits.DailyReward
		resp.Message = "每日奖励已到账"
	}
	return resp, nil
}

// GrantDailyRewardIfDue 自然日内最多发放一次。底层是按存储日期做条件更新的
// CAS，同一天的并发请求只会有一条生效。
func (s *CreditService) GrantDailyRewardIfDue(userID int64, now time.Time) (bool, error) {
	return s.userRepo.GrantDailyReward(userID, now, s.cfg.Credits.DailyReward)
}

// Balance 只读余额，不触发每日奖励检查
func (s *CreditService) Balance(userID int64) (int, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return 0, err
	}
	return user.Credits, nil
}

// Refund 退还积分（补偿用）
func (s *CreditService) Refund(userID int64, amount int) error {
	return s.userRepo.AddCredits(nil, userID, amount)
}

// AddCredits 充值入账，返回最新余额。本操作不去重，
// 幂等由调用方（支付入账的唯一订单号）保证。
func (s *CreditService) AddCredits(userID int64, amount int) (int, error) {
	if err := s.userRepo.AddCredits(nil, userID, amount); err != nil {
		return 0, err
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return 0, err
	}
	return user.Credits, nil
}
