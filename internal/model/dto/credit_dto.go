package dto

// BalanceResponse 积分余额（读取时已完成每日奖励检查）
type BalanceResponse struct {
	Credits       int    `json:"credits"`
	DailyRewarded bool   `json:"daily_rewarded"`
	RewardAmount  int    `json:"reward_amount,omitempty"`
	Message       string `json:"message,omitempty"`
}
