package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dimission-forecast/internal/dto"
	"dimission-forecast/internal/service"
	"dimission-forecast/pkg/response"
)

// BacktestHandler 回测 HTTP 处理器
type BacktestHandler struct {
	backtestSvc service.BacktestService
}

// NewBacktestHandler 创建 BacktestHandler
func NewBacktestHandler(backtestSvc service.BacktestService) *BacktestHandler {
	return &BacktestHandler{backtestSvc: backtestSvc}
}

// Run 扩展窗口回测
// POST /api/v1/backtests
func (h *BacktestHandler) Run(c *gin.Context) {
	var req dto.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeBadRequest, "参数校验失败", err.Error())
		return
	}

	resp, err := h.backtestSvc.Run(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, resp)
}
