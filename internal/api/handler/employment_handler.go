package handler

import (
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"dimission-forecast/internal/api/middleware"
	"dimission-forecast/internal/service"
	"dimission-forecast/pkg/response"
)

// EmploymentHandler 人事记录导入 HTTP 处理器
type EmploymentHandler struct {
	importSvc service.ImportService
}

// NewEmploymentHandler 创建 EmploymentHandler
func NewEmploymentHandler(importSvc service.ImportService) *EmploymentHandler {
	return &EmploymentHandler{importSvc: importSvc}
}

// Import 上传花名册 xlsx，按单元整体替换人事记录
// POST /api/v1/employment/import  (multipart, 字段 file)
func (h *EmploymentHandler) Import(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.PayloadTooLarge(c)
			return
		}
		response.BadRequest(c, response.CodeBadRequest, "缺少上传文件 file")
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		response.BadRequest(c, 20402, "仅支持 .xlsx 文件")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 20401, "无法读取上传文件")
		return
	}
	defer f.Close()

	result, err := h.importSvc.ImportEmployment(c.Request.Context(), f)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.OK(c, result)
}
