package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"dimission-forecast/internal/forecast"
	"dimission-forecast/internal/service"
	pkgerrors "dimission-forecast/pkg/errors"
	"dimission-forecast/pkg/response"
)

// parseDateOr 解析 YYYY-MM-DD，为空时返回 fallback
// 解析失败时写入 400 响应，调用方应在 ok=false 时直接 return
func parseDateOr(c *gin.Context, raw string, fallback time.Time) (time.Time, bool) {
	if raw == "" {
		return fallback, true
	}
	d, err := forecast.ParseDay(raw)
	if err != nil {
		response.BadRequest(c, response.CodeBadRequest, "日期格式应为 YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

// handleServiceError 把 Service 层错误映射为 HTTP 响应
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownUnit):
		response.BadRequest(c, 20001, "未配置的组织单元")
	case errors.Is(err, service.ErrNoForecast):
		response.NotFound(c, 20101, "该日期暂无预测结果")
	case errors.Is(err, service.ErrNoMonitorData):
		response.NotFound(c, 20102, "该日期暂无监控数据")
	case errors.Is(err, pkgerrors.ErrLockHeld):
		response.Conflict(c, 20201, "同类任务正在执行")
	case errors.Is(err, service.ErrAllUnitsFailed):
		response.UnprocessableEntity(c, 20202, "所有单元均处理失败", err.Error())
	case errors.Is(err, service.ErrImportInvalidFile),
		errors.Is(err, service.ErrImportMissingColumn),
		errors.Is(err, service.ErrImportInvalidRow),
		errors.Is(err, service.ErrImportEmpty):
		response.ErrorWithDetails(c, 400, 20401, "导入文件校验失败", err.Error())
	case errors.Is(err, forecast.ErrConfig):
		response.ErrorWithDetails(c, 400, 20301, "参数或配置错误", err.Error())
	case errors.Is(err, forecast.ErrData):
		response.UnprocessableEntity(c, 20302, "数据不足或不一致", err.Error())
	case errors.Is(err, forecast.ErrComputation):
		response.UnprocessableEntity(c, 20303, "模型计算失败", err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
