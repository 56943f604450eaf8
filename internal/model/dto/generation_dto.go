package dto

// GenerateRequest 文生图请求
type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required,max=2000"`
	Ratio  string `json:"ratio,omitempty" binding:"omitempty,max=10"`
	Style  string `json:"style,omitempty" binding:"omitempty,max=50"`
	Model  string `json:"model,omitempty" binding:"omitempty,max=100"`
}

// GenerateVariantRequest 图生图请求，Image 为 data URL（base64）
type GenerateVariantRequest struct {
	Prompt   string  `json:"prompt" binding:"required,max=2000"`
	Image    string  `json:"image" binding:"required"`
	Strength float64 `json:"strength,omitempty" binding:"omitempty,min=0,max=1"`
	Model    string  `json:"model,omitempty" binding:"omitempty,max=100"`
}

// GenerationResult 单次生成结果
type GenerationResult struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	ImageURL  string `json:"image_url,omitempty"`
	Prompt    string `json:"prompt"`
	Ratio     string `json:"ratio"`
	CreatedAt string `json:"created_at"`
}

// GenerationListItem 历史记录列表项
type GenerationListItem struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	Prompt    string `json:"prompt"`
	ModelID   string `json:"model_id"`
	Ratio     string `json:"ratio"`
	Style     string `json:"style,omitempty"`
	Cost      int    `json:"cost"`
	Status    string `json:"status"`
	ImageURL  string `json:"image_url,omitempty"`
	CreatedAt string `json:"created_at"`
}
