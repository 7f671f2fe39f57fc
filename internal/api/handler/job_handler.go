package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"dimission-forecast/internal/dto"
	"dimission-forecast/internal/service"
	"dimission-forecast/pkg/response"
)

// JobHandler 手动触发任务 HTTP 处理器
// 与定时任务共用 JobRunner，同类任务互斥
type JobHandler struct {
	jobs service.JobRunner
}

// NewJobHandler 创建 JobHandler
func NewJobHandler(jobs service.JobRunner) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// Sync 重建日序列
// POST /api/v1/jobs/sync
func (h *JobHandler) Sync(c *gin.Context) {
	run(c, h.jobs.Today(), func(ctx context.Context, d time.Time) (any, error) {
		return h.jobs.RunSync(ctx, d)
	})
}

// Predict 以指定日期为起始日预测
// POST /api/v1/jobs/predict
func (h *JobHandler) Predict(c *gin.Context) {
	run(c, h.jobs.Today(), func(ctx context.Context, d time.Time) (any, error) {
		return h.jobs.RunPredict(ctx, d)
	})
}

// Daily 同步后预测，与定时任务相同
// POST /api/v1/jobs/daily
func (h *JobHandler) Daily(c *gin.Context) {
	run(c, h.jobs.Today(), func(ctx context.Context, d time.Time) (any, error) {
		return h.jobs.RunDaily(ctx, d)
	})
}

// Monitor 监控指定日期的单日预测，缺省为昨天
// POST /api/v1/jobs/monitor
func (h *JobHandler) Monitor(c *gin.Context) {
	run(c, h.jobs.Today().AddDate(0, 0, -1), func(ctx context.Context, d time.Time) (any, error) {
		return h.jobs.RunMonitor(ctx, d)
	})
}

func run(c *gin.Context, fallback time.Time, fn func(ctx context.Context, d time.Time) (any, error)) {
	var req dto.JobRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, response.CodeBadRequest, "参数校验失败")
			return
		}
	}
	date, ok := parseDateOr(c, req.Date, fallback)
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), date)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}
