package handler

import (
	"github.com/gin-gonic/gin"

	"dimission-forecast/internal/dto"
	"dimission-forecast/internal/service"
	"dimission-forecast/pkg/response"
)

// ForecastHandler 预测与监控查询 HTTP 处理器
type ForecastHandler struct {
	forecastSvc service.ForecastService
	monitorSvc  service.MonitorService
	jobs        service.JobRunner
}

// NewForecastHandler 创建 ForecastHandler
func NewForecastHandler(forecastSvc service.ForecastService, monitorSvc service.MonitorService, jobs service.JobRunner) *ForecastHandler {
	return &ForecastHandler{forecastSvc: forecastSvc, monitorSvc: monitorSvc, jobs: jobs}
}

// GetForecasts 查询某天起的各单元预测
// GET /api/v1/forecasts?date=2023-03-01
func (h *ForecastHandler) GetForecasts(c *gin.Context) {
	var q dto.ForecastQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
		return
	}
	date, ok := parseDateOr(c, q.Date, h.jobs.Today())
	if !ok {
		return
	}

	resp, err := h.forecastSvc.Get(c.Request.Context(), date)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, resp)
}

// GetMonitor 查询单日预测监控，date 缺省为昨天
// GET /api/v1/monitor?date=2023-02-28
func (h *ForecastHandler) GetMonitor(c *gin.Context) {
	date, ok := parseDateOr(c, c.Query("date"), h.jobs.Today().AddDate(0, 0, -1))
	if !ok {
		return
	}

	items, err := h.monitorSvc.List(c.Request.Context(), date)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, items)
}
