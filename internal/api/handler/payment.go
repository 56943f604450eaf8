package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/pixelmuse/imagen_go_server/internal/api/middleware"
	"github.com/pixelmuse/imagen_go_server/internal/model/dto"
	"github.com/pixelmuse/imagen_go_server/internal/pkg/response"
	"github.com/pixelmuse/imagen_go_server/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// ListPackages 充值套餐列表
// GET /api/v1/payments/packages
func (h *PaymentHandler) ListPackages(c *gin.Context) {
	response.Success(c, gin.H{
		"packages": h.paymentService.Packages(),
	})
}

// Capture 确认支付订单并入账积分
// POST /api/v1/payments/capture
func (h *PaymentHandler) Capture(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.CapturePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	resp, err := h.paymentService.Capture(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownPackage):
			response.ParamError(c, err.Error())
		case errors.Is(err, service.ErrAmountMismatch):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "")
		}
		return
	}

	if resp.Duplicate {
		response.SuccessWithMessage(c, "订单已处理过", resp)
		return
	}
	response.SuccessWithMessage(c, "充值成功", resp)
}
