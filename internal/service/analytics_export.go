package service

import (
	"context"
	"io"
	"strconv"

	"github.com/stockdesk/internal/logger"

	"github.com/360EntSecGroup-Skylar/excelize"
)

const (
	analyticsSheetABC   = "ABC"
	analyticsSheetAging = "Aging"
)

// ExportAnalytics 导出 XLSX 工作簿，包含 ABC 与 Aging 两个工作表
func (s *AnalyticsService) ExportAnalytics(ctx context.Context, input AnalyticsQueryInput, w io.Writer) error {
	abc, err := s.ABCAnalysis(ctx, input)
	if err != nil {
		return err
	}
	aging, err := s.AgingInventory(ctx, input.ForceRefresh)
	if err != nil {
		return err
	}

	book := excelize.NewFile()
	book.SetSheetName("Sheet1", analyticsSheetABC)
	writeSheetRows(book, analyticsSheetABC, []string{
		"rank", "product_id", "product_name", "units", "revenue", "share_percent", "cumulative_percent", "class",
	}, len(abc.Items), func(i int) []interface{} {
		item := abc.Items[i]
		return []interface{}{
			item.Rank, item.ProductID, item.ProductName, item.Units,
			item.Revenue, item.SharePercent, item.CumulativePercent, item.Class,
		}
	})

	book.NewSheet(analyticsSheetAging)
	writeSheetRows(book, analyticsSheetAging, []string{
		"sku_id", "product_name", "sku_code", "stock", "days_since_sale", "never_sold", "bucket", "stock_value",
	}, len(aging.Items), func(i int) []interface{} {
		item := aging.Items[i]
		return []interface{}{
			item.SKUID, item.ProductName, item.SKUCode, item.Stock,
			item.DaysSinceSale, item.NeverSold, item.Bucket, item.StockValue,
		}
	})
	summaryRow := len(aging.Items) + 3
	for i, bucket := range aging.Buckets {
		row := strconv.Itoa(summaryRow + i)
		book.SetCellValue(analyticsSheetAging, "A"+row, bucket.Label)
		book.SetCellValue(analyticsSheetAging, "B"+row, bucket.SKUCount)
		book.SetCellValue(analyticsSheetAging, "C"+row, bucket.Units)
		book.SetCellValue(analyticsSheetAging, "D"+row, bucket.StockValue)
	}

	if err := book.Write(w); err != nil {
		return err
	}
	logger.Infow("analytics_exported", "abc_rows", len(abc.Items), "aging_rows", len(aging.Items))
	return nil
}

func writeSheetRows(book *excelize.File, sheet string, header []string, count int, row func(i int) []interface{}) {
	for col, title := range header {
		book.SetCellValue(sheet, cellName(col, 1), title)
	}
	for i := 0; i < count; i++ {
		for col, value := range row(i) {
			book.SetCellValue(sheet, cellName(col, i+2), value)
		}
	}
}

// cellName 将从 0 开始的列号与从 1 开始的行号转换为 A1 形式
func cellName(col, row int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name + strconv.Itoa(row)
}
