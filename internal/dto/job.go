package dto

// ── 任务 DTO ──

// JobRequest 手动触发任务，date 缺省为当天（监控任务缺省为昨天）
type JobRequest struct {
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// UnitResult 单元处理结果
type UnitResult struct {
	Unit   string `json:"unit"`
	OK     bool   `json:"ok"`
	Rows   int    `json:"rows,omitempty"`
	Error  string `json:"error,omitempty"`
	Reason string `json:"reason,omitempty"` // data | computation | config
}

// SyncResult 同步任务结果
type SyncResult struct {
	Date  string       `json:"date"`
	Units []UnitResult `json:"units"`
}

// PredictResult 预测任务结果
type PredictResult struct {
	Date  string         `json:"date"`
	RunID string         `json:"run_id"`
	Units []UnitResult   `json:"units"`
	Items []ForecastItem `json:"items"`
}

// MonitorItem 单元单日预测监控
type MonitorItem struct {
	Unit      string  `json:"unit"`
	UnitName  string  `json:"unit_name"`
	Date      string  `json:"date"`
	Actual    int     `json:"actual"`
	Predicted int     `json:"predicted"`
	MAE       float64 `json:"mae"`
	MAERate   float64 `json:"mae_rate"`
}

// MonitorResult 监控任务结果
type MonitorResult struct {
	Date    string        `json:"date"`
	Items   []MonitorItem `json:"items"`
	Skipped []UnitResult  `json:"skipped,omitempty"`
}

// DailyJobResult 每日定时任务（同步 + 预测）结果
type DailyJobResult struct {
	Sync    *SyncResult    `json:"sync"`
	Predict *PredictResult `json:"predict,omitempty"`
}

// ImportResult 人事记录导入结果
type ImportResult struct {
	Units map[string]int `json:"units"` // 单元 → 导入条数
	Rows  int            `json:"rows"`
}
