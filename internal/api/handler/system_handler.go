package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dimission-forecast/config"
	"dimission-forecast/internal/dto"
	"dimission-forecast/pkg/response"
)

// HealthCheck 依赖健康检查
type HealthCheck func(ctx context.Context) error

// SystemHandler 健康检查与运行配置
type SystemHandler struct {
	cfg    *config.ForecastConfig
	checks map[string]HealthCheck
}

// NewSystemHandler 创建 SystemHandler，checks 键为 "database" / "redis"
func NewSystemHandler(cfg *config.ForecastConfig, checks map[string]HealthCheck) *SystemHandler {
	return &SystemHandler{cfg: cfg, checks: checks}
}

// Health 健康检查
// GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	resp := dto.HealthResponse{
		Status:   "ok",
		Horizons: make(map[string]string, len(h.cfg.HorizonModels)),
	}
	for _, u := range h.cfg.Units {
		resp.Units = append(resp.Units, dto.UnitInfo{Code: u.Code, Name: u.Name})
	}
	for days, family := range h.cfg.HorizonModels {
		resp.Horizons[strconv.Itoa(days)] = family
	}

	status := func(name string) string {
		check, ok := h.checks[name]
		if !ok {
			return ""
		}
		if err := check(ctx); err != nil {
			resp.Status = "degraded"
			return "down"
		}
		return "up"
	}
	resp.Database = status("database")
	resp.Redis = status("redis")

	if resp.Database == "down" {
		response.ServiceUnavailable(c, "数据库不可用", resp)
		return
	}
	response.OK(c, resp)
}
