package dto

// CapturePaymentRequest 支付完成回调。OrderID 由支付组件（如 PayPal 按钮）
// capture 成功后传入，本服务只做入账，不校验支付本身。
type CapturePaymentRequest struct {
	OrderID   string `json:"order_id" binding:"required,max=100"`
	PackageID string `json:"package_id" binding:"required,max=50"`
	Amount    string `json:"amount" binding:"required,max=20"`
}

// CapturePaymentResponse 入账结果
type CapturePaymentResponse struct {
	Credits      int  `json:"credits"`
	AddedCredits int  `json:"added_credits"`
	Duplicate    bool `json:"duplicate,omitempty"`
}

// PackageInfo 充值套餐
type PackageInfo struct {
	ID      string `json:"id"`
	Amount  string `json:"amount"`
	Credits int    `json:"credits"`
}
