package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pixelmuse/imagen_go_server/config"
	"github.com/pixelmuse/imagen_go_server/internal/api/middleware"
	"github.com/pixelmuse/imagen_go_server/internal/pkg/response"
	"github.com/pixelmuse/imagen_go_server/internal/service"
)

type ModelsHandler struct {
	cfg           *config.Config
	creditService *service.CreditService
}

func NewModelsHandler(cfg *config.Config, creditService *service.CreditService) *ModelsHandler {
	return &ModelsHandler{
		cfg:           cfg,
		creditService: creditService,
	}
}

// List 获取可用模型列表。登录用户额外返回当前余额，方便前端展示可用次数
// GET /api/v1/models
func (h *ModelsHandler) List(c *gin.Context) {
	models := make([]map[string]interface{}, len(h.cfg.Models))

	for i, m := range h.cfg.Models {
		models[i] = map[string]interface{}{
			"name":         m.Name,
			"display_name": m.DisplayName,
			"description":  m.Description,
			"model_id":     service.ResolveModelID(m.Name),
			"cost":         h.cfg.Credits.GenerationCost,
		}
	}

	data := gin.H{
		"models": models,
	}

	if userID, ok := middleware.GetUserID(c); ok {
		if credits, err := h.creditService.Balance(userID); err == nil {
			data["credits"] = credits
		}
	}

	response.Success(c, data)
}
