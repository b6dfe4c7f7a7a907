// Package interfaces renders balance sheets for human consumption.
package interfaces

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	balance "mining-ledger/internal/balance/domain"
	"mining-ledger/internal/observability/metrics"
)

const dayLayout = "2006-01-02"

// BuildBalanceSheetPDF renders a detailed balance sheet as PDF.
func BuildBalanceSheetPDF(sheet balance.DetailedSheet, title string) ([]byte, error) {
	began := time.Now()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, title)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s (%d days)",
		sheet.Start.Format(dayLayout), sheet.End.Format(dayLayout), sheet.Days))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Containers: %s", strings.Join(sheet.ContainerIDs, ", ")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Average uptime: %s", sheet.Balance.Uptime.StringFixed(4)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Average hashrate (TH/s): %.2f", sheet.Balance.HashrateTHs))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Field", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "BTC", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Source", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range balanceRows(sheet.Balance) {
		pdf.CellFormat(60, 6, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, row.btc, "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, row.source, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	if len(sheet.Details) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Capacity segments")
		pdf.Ln(7)
		pdf.CellFormat(45, 6, "Period", "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, "Days", "1", 0, "C", false, 0, "")
		pdf.CellFormat(45, 6, "Revenue (BTC)", "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, "Containers", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		for _, d := range sheet.Details {
			pdf.CellFormat(45, 6, fmt.Sprintf("%s / %s", d.Start.Format(dayLayout), d.End.Format(dayLayout)), "1", 0, "C", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%d", d.Days), "1", 0, "R", false, 0, "")
			pdf.CellFormat(45, 6, d.Balance.Revenue.BTC.StringFixed(8), "1", 0, "R", false, 0, "")
			pdf.CellFormat(60, 6, strings.Join(d.ContainerIDs, ", "), "1", 0, "L", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		metrics.ObserveExport("pdf", metrics.ResultError, time.Since(began).Seconds())
		return nil, err
	}
	metrics.ObserveExport("pdf", metrics.ResultSuccess, time.Since(began).Seconds())
	return buf.Bytes(), nil
}

// BuildBalanceSheetXLSX renders a detailed balance sheet as XLSX with a
// summary sheet and one row per capacity segment.
func BuildBalanceSheetXLSX(sheet balance.DetailedSheet, title string) ([]byte, error) {
	began := time.Now()

	f := excelize.NewFile()
	summarySheet := "summary"
	segmentsSheet := "segments"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(segmentsSheet)

	_ = f.SetCellValue(summarySheet, "A1", title)
	_ = f.SetCellValue(summarySheet, "A3", "Start")
	_ = f.SetCellValue(summarySheet, "B3", sheet.Start.Format(dayLayout))
	_ = f.SetCellValue(summarySheet, "A4", "End")
	_ = f.SetCellValue(summarySheet, "B4", sheet.End.Format(dayLayout))
	_ = f.SetCellValue(summarySheet, "A5", "Days")
	_ = f.SetCellValue(summarySheet, "B5", sheet.Days)
	_ = f.SetCellValue(summarySheet, "A6", "Containers")
	_ = f.SetCellValue(summarySheet, "B6", strings.Join(sheet.ContainerIDs, ", "))
	_ = f.SetCellValue(summarySheet, "A7", "Average uptime")
	_ = f.SetCellValue(summarySheet, "B7", sheet.Balance.Uptime.StringFixed(4))
	_ = f.SetCellValue(summarySheet, "A8", "Average hashrate (TH/s)")
	_ = f.SetCellValue(summarySheet, "B8", sheet.Balance.HashrateTHs)

	row := 10
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Field")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), "BTC")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), "Source")
	for _, r := range balanceRows(sheet.Balance) {
		row++
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), r.label)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), r.btc)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("C%d", row), r.source)
	}

	_ = f.SetCellValue(segmentsSheet, "A1", "Start")
	_ = f.SetCellValue(segmentsSheet, "B1", "End")
	_ = f.SetCellValue(segmentsSheet, "C1", "Days")
	_ = f.SetCellValue(segmentsSheet, "D1", "Revenue (BTC)")
	_ = f.SetCellValue(segmentsSheet, "E1", "Containers")
	for i, d := range sheet.Details {
		r := i + 2
		_ = f.SetCellValue(segmentsSheet, fmt.Sprintf("A%d", r), d.Start.Format(dayLayout))
		_ = f.SetCellValue(segmentsSheet, fmt.Sprintf("B%d", r), d.End.Format(dayLayout))
		_ = f.SetCellValue(segmentsSheet, fmt.Sprintf("C%d", r), d.Days)
		_ = f.SetCellValue(segmentsSheet, fmt.Sprintf("D%d", r), d.Balance.Revenue.BTC.StringFixed(8))
		_ = f.SetCellValue(segmentsSheet, fmt.Sprintf("E%d", r), strings.Join(d.ContainerIDs, ", "))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		metrics.ObserveExport("xlsx", metrics.ResultError, time.Since(began).Seconds())
		return nil, err
	}
	metrics.ObserveExport("xlsx", metrics.ResultSuccess, time.Since(began).Seconds())
	return buf.Bytes(), nil
}

type balanceRow struct {
	label  string
	btc    string
	source string
}

func balanceRows(b balance.Aggregate) []balanceRow {
	return []balanceRow{
		{"Income / pool", b.Income.Pool.BTC.StringFixed(8), string(b.Income.Pool.Source)},
		{"Income / other", b.Income.Other.BTC.StringFixed(8), string(b.Income.Other.Source)},
		{"Expenses / electricity", b.Expenses.Electricity.BTC.StringFixed(8), string(b.Expenses.Electricity.Source)},
		{"Expenses / CSM", b.Expenses.CSM.BTC.StringFixed(8), string(b.Expenses.CSM.Source)},
		{"Expenses / operator", b.Expenses.Operator.BTC.StringFixed(8), string(b.Expenses.Operator.Source)},
		{"Expenses / other", b.Expenses.Other.BTC.StringFixed(8), string(b.Expenses.Other.Source)},
		{"Revenue", b.Revenue.BTC.StringFixed(8), string(b.Revenue.Source)},
	}
}
