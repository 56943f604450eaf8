package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/pixelmuse/imagen_go_server/internal/api/middleware"
	"github.com/pixelmuse/imagen_go_server/internal/model/dto"
	"github.com/pixelmuse/imagen_go_server/internal/pkg/response"
	"github.com/pixelmuse/imagen_go_server/internal/service"
)

type GenerationHandler struct {
	genService *service.GenerationService
}

func NewGenerationHandler(genService *service.GenerationService) *GenerationHandler {
	return &GenerationHandler{
		genService: genService,
	}
}

// Generate 文生图
// POST /api/v1/generations
func (h *GenerationHandler) Generate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.genService.Generate(c.Request.Context(), userID, &req)
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, result)
}

// GenerateVariant 图生图（基于已有图片生成变体）
// POST /api/v1/generations/variants
func (h *GenerationHandler) GenerateVariant(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.GenerateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	result, err := h.genService.GenerateVariant(c.Request.Context(), userID, &req)
	if err != nil {
		h.mapError(c, err)
		return
	}

	response.Success(c, result)
}

// History 生成历史（最新在前）
// GET /api/v1/generations
func (h *GenerationHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	items, err := h.genService.History(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}

	response.Success(c, gin.H{
		"items": items,
		"total": len(items),
	})
}

func (h *GenerationHandler) mapError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInsufficientCredits):
		response.CreditsError(c, err.Error())
	case errors.Is(err, service.ErrUpstreamUnavailable):
		response.UpstreamError(c, "图片生成服务暂时不可用，积分已退还")
	case errors.Is(err, service.ErrNoImageReturned):
		response.UpstreamError(c, "模型未返回图片，积分已退还")
	default:
		response.ServerError(c, "")
	}
}
