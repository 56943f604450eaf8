package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/pixelmuse/imagen_go_server/internal/api/middleware"
	"github.com/pixelmuse/imagen_go_server/internal/pkg/response"
	"github.com/pixelmuse/imagen_go_server/internal/service"
)

type CreditHandler struct {
	creditService *service.CreditService
}

func NewCreditHandler(creditService *service.CreditService) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
	}
}

// GetBalance 查询积分余额，顺带发放当日奖励
// GET /api/v1/credits/balance
func (h *CreditHandler) GetBalance(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	balance, err := h.creditService.GetBalance(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, balance)
}
