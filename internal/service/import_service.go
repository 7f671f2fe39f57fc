package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"dimission-forecast/config"
	"dimission-forecast/internal/dto"
	"dimission-forecast/internal/forecast"
	"dimission-forecast/internal/model"
	"dimission-forecast/internal/repository"
)

// ── 导入模块业务错误 ──

var (
	ErrImportInvalidFile   = errors.New("无法解析 Excel 文件")
	ErrImportMissingColumn = errors.New("缺少必需列")
	ErrImportInvalidRow    = errors.New("数据行格式错误")
	ErrImportEmpty         = errors.New("文件中没有数据行")
)

// ImportService 人事记录导入业务接口
type ImportService interface {
	// ImportEmployment 读取人事花名册 Excel，按单元整体替换人事记录
	// 任一行校验失败时不写入任何数据
	ImportEmployment(ctx context.Context, r io.Reader) (*dto.ImportResult, error)
}

type importService struct {
	cfg    *config.ForecastConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(cfg *config.ForecastConfig, repo *repository.Repository, logger *zap.Logger) ImportService {
	return &importService{cfg: cfg, repo: repo, logger: logger}
}

// 表头别名 → 字段
var importColumns = map[string]string{
	"单元": "unit", "园区": "unit", "unit": "unit",
	"类别": "category", "职别": "category", "staff_category": "category",
	"计薪方式": "pay_type", "pay_type": "pay_type",
	"入职日期": "join_date", "join_date": "join_date",
	"离职日期": "departure_date", "departure_date": "departure_date",
	"离职方式": "reason", "departure_reason": "reason",
}

var requiredColumns = []string{"unit", "join_date"}

var cellDateLayouts = []string{"2006-01-02", "2006/01/02", "2006/1/2", "2006-1-2", "01-02-06", "2006-01-02 15:04:05"}

// ═══════════════════════════════════════════════════════════
// ImportEmployment — 首个 Sheet，首行为表头
// ═══════════════════════════════════════════════════════════

func (s *importService) ImportEmployment(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportInvalidFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportInvalidFile, err)
	}
	if len(rows) < 2 {
		return nil, ErrImportEmpty
	}

	index := make(map[string]int)
	for i, h := range rows[0] {
		if field, ok := importColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			index[field] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrImportMissingColumn, c)
		}
	}
	// 同步按离职方式筛选离职人员，配置了筛选时必须提供该列
	filterReasons := len(s.cfg.DepartureReasons) > 0
	if _, ok := index["reason"]; filterReasons && !ok {
		return nil, fmt.Errorf("%w: departure_reason", ErrImportMissingColumn)
	}

	get := func(row []string, field string) string {
		i, ok := index[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	byUnit := make(map[string][]model.EmploymentRecord)
	total := 0
	for n, row := range rows[1:] {
		line := n + 2
		unit := get(row, "unit")
		if unit == "" && get(row, "join_date") == "" {
			continue // 空行
		}
		if !hasUnit(s.cfg, unit) {
			return nil, fmt.Errorf("%w: 第 %d 行单元 %q 未配置", ErrImportInvalidRow, line, unit)
		}

		join, err := parseCellDate(get(row, "join_date"))
		if err != nil {
			return nil, fmt.Errorf("%w: 第 %d 行入职日期: %v", ErrImportInvalidRow, line, err)
		}
		rec := model.EmploymentRecord{
			Unit:            unit,
			StaffCategory:   get(row, "category"),
			PayType:         get(row, "pay_type"),
			JoinDate:        join,
			DepartureReason: get(row, "reason"),
		}
		if rec.StaffCategory == "" {
			rec.StaffCategory = s.cfg.StaffCategory
		}
		if rec.PayType == "" {
			rec.PayType = s.cfg.PayType
		}
		if raw := get(row, "departure_date"); raw != "" {
			dep, err := parseCellDate(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: 第 %d 行离职日期: %v", ErrImportInvalidRow, line, err)
			}
			if dep.Before(join) {
				return nil, fmt.Errorf("%w: 第 %d 行离职日期早于入职日期", ErrImportInvalidRow, line)
			}
			if filterReasons && rec.DepartureReason == "" {
				return nil, fmt.Errorf("%w: 第 %d 行缺少离职方式", ErrImportInvalidRow, line)
			}
			rec.DepartureDate = &dep
		}
		byUnit[unit] = append(byUnit[unit], rec)
		total++
	}
	if total == 0 {
		return nil, ErrImportEmpty
	}

	result := &dto.ImportResult{Units: make(map[string]int, len(byUnit)), Rows: total}
	for _, unit := range s.cfg.UnitCodes() {
		records, ok := byUnit[unit]
		if !ok {
			continue
		}
		if err := s.repo.Employment.ReplaceUnit(ctx, unit, records); err != nil {
			s.logger.Error("写入人事记录失败", zap.String("unit", unit), zap.Error(err))
			return nil, err
		}
		result.Units[unit] = len(records)
	}

	s.logger.Info("人事记录导入完成", zap.Int("rows", total), zap.Int("units", len(result.Units)))
	return result, nil
}

func parseCellDate(raw string) (time.Time, error) {
	for _, layout := range cellDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return forecast.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("无法识别的日期 %q", raw)
}
