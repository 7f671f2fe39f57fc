package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 单 Sheet：每行一个单元，每列一个预测天数
type ExportService interface {
	// ExportForecast 导出 date 的预测结果为 Excel
	ExportForecast(ctx context.Context, date time.Time) (*bytes.Buffer, string, error)
}

type exportService struct {
	forecasts ForecastService
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(forecasts ForecastService, logger *zap.Logger) ExportService {
	return &exportService{forecasts: forecasts, logger: logger}
}

const exportTitle = "普工离职人数预测（非派遣）"

// ═══════════════════════════════════════════════════════════
// ExportForecast — 导出预测表
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 标题行：普工离职人数预测（非派遣） yyyy-mm-dd
//   - 表头：园区 | 未来1天 | 未来3天 | 未来7天 | ...
//   - 单元格：预测离职人数，缺失为 "-"
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportForecast(ctx context.Context, date time.Time) (*bytes.Buffer, string, error) {
	resp, err := s.forecasts.Get(ctx, date)
	if err != nil {
		return nil, "", err
	}

	// 1. 行：单元（保持查询顺序），列：预测天数（升序）
	var units []string
	unitNames := make(map[string]string)
	var horizons []int
	horizonSeen := make(map[int]bool)
	cells := make(map[string]map[int]int)
	for _, it := range resp.Items {
		if _, ok := cells[it.Unit]; !ok {
			cells[it.Unit] = make(map[int]int)
			units = append(units, it.Unit)
			unitNames[it.Unit] = it.UnitName
		}
		cells[it.Unit][it.Days] = it.Number
		if !horizonSeen[it.Days] {
			horizonSeen[it.Days] = true
			horizons = append(horizons, it.Days)
		}
	}
	sort.Ints(horizons)

	// 2. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "离职预测"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	for i := range horizons {
		col := colName(1 + i)
		f.SetColWidth(sheetName, col, col, 12)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s %s", exportTitle, resp.Date))
	f.MergeCell(sheetName, "A1", cell(colName(len(horizons)), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(sheetName, cell("A", 2), "园区")
	for i, d := range horizons {
		f.SetCellValue(sheetName, cell(colName(1+i), 2), fmt.Sprintf("未来%d天", d))
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(horizons)), 2), headerStyle)

	// 数据行
	row := 3
	for _, u := range units {
		f.SetCellValue(sheetName, cell("A", row), unitNames[u])
		for i, d := range horizons {
			if n, ok := cells[u][d]; ok {
				f.SetCellValue(sheetName, cell(colName(1+i), row), n)
			} else {
				f.SetCellValue(sheetName, cell(colName(1+i), row), "-")
			}
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("离职人数预测_%s.xlsx", resp.Date)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
