package dto

// ── 系统接口响应 ──

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status   string            `json:"status"`
	Database string            `json:"database"`
	Redis    string            `json:"redis,omitempty"` // 未启用 Redis 时省略
	Units    []UnitInfo        `json:"units"`
	Horizons map[string]string `json:"horizon_models"`
}

// UnitInfo 组织单元
type UnitInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
