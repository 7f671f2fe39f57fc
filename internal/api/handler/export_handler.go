package handler

import (
	"github.com/gin-gonic/gin"

	"dimission-forecast/internal/service"
	"dimission-forecast/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
	jobs      service.JobRunner
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, jobs service.JobRunner) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, jobs: jobs}
}

// ExportForecasts 导出预测表，date 缺省为今天
// GET /api/v1/export/forecasts?date=2023-03-01
func (h *ExportHandler) ExportForecasts(c *gin.Context) {
	date, ok := parseDateOr(c, c.Query("date"), h.jobs.Today())
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportForecast(c.Request.Context(), date)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.Attachment(c, filename, xlsxContentType, buf.Bytes())
}
