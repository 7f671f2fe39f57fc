package dto

import "dimission-forecast/internal/forecast"

// ── 预测查询 DTO ──

// ForecastQuery 预测查询参数，date 缺省为当天
type ForecastQuery struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// ForecastItem 单元某个预测区间的结果
type ForecastItem struct {
	Unit      string `json:"unit"`
	UnitName  string `json:"unit_name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
	Number    int    `json:"number"`
	Model     string `json:"model"`
	RunID     string `json:"run_id"`
}

// ForecastResponse 某天的全部预测
type ForecastResponse struct {
	Date  string         `json:"date"`
	Items []ForecastItem `json:"items"`
}

// ── 回测 DTO ──

// BacktestRequest 回测请求
// 训练集为 split_date 之前的全部历史，测试窗口为 [split_date, end_date]
type BacktestRequest struct {
	Unit      string `json:"unit"       binding:"required"`
	SplitDate string `json:"split_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   binding:"omitempty,datetime=2006-01-02"`
	Days      int    `json:"days"       binding:"omitempty,min=1,max=7"`
	Model     string `json:"model"      binding:"omitempty,oneof=lgbm xgboost linear"`
}

// BacktestDay 回测窗口中的一天
type BacktestDay struct {
	Date      string  `json:"date"`
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
}

// BacktestResponse 回测结果
type BacktestResponse struct {
	Unit       string              `json:"unit"`
	Model      string              `json:"model"`
	TrainSize  int                 `json:"train_size"`
	TestSize   int                 `json:"test_size"`
	Daily      []BacktestDay       `json:"daily"`
	Evaluation forecast.Evaluation `json:"evaluation"`
}
