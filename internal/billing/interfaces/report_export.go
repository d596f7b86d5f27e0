package interfaces

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"pallet-cloud/internal/billing/application"
	billing "pallet-cloud/internal/billing/domain"
)

const reportDateLayout = "2006.01.02"

// vatNote is appended under every vendor section, matching the wording of
// the original monthly report.
const vatNote = "부가세 별도"

// BuildVendorReportXLSX renders the monthly settlement workbook: one sheet
// per vendor plus a rollup sheet.
func BuildVendorReportXLSX(result *application.RunResult) ([]byte, error) {
	f := excelize.NewFile()
	rollupSheet := "monthly-rollup"
	f.SetSheetName("Sheet1", rollupSheet)

	used := map[string]int{rollupSheet: 1}
	for _, group := range result.Groups {
		sheet := sheetName(group.VendorName, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
		if err := writeVendorSheet(f, sheet, group); err != nil {
			return nil, err
		}
	}

	writeRollupSheet(f, rollupSheet, result)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var rowHeader = []string{
	"파레트 ID", "품목명", "입고수량", "출고수량", "잔여수량",
	"입고일", "출고일", "보관종료일", "상태", "정산시작일", "보관일수", "보관료",
}

func writeVendorSheet(f *excelize.File, sheet string, group billing.VendorGroup) error {
	_ = f.SetCellValue(sheet, "A1", group.VendorName)
	for col, title := range rowHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			return err
		}
		_ = f.SetCellValue(sheet, cell, title)
	}

	var feeTotal int64
	for i, row := range group.Rows {
		line := i + 3
		values := []any{
			row.PalletID,
			row.ProductName,
			row.InboundQty,
			row.OutboundQty,
			row.RemainingQty,
			formatReportDate(row.InboundDate),
			formatReportDate(row.OutboundDate),
			formatReportDate(row.StorageEndDate),
			statusLabel(row.Status),
			formatReportDate(row.BillingPeriodStart),
			cellOrBlank(row.StorageDays, row.Excluded),
			cellOrBlank(row.StorageFee, row.Excluded),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, line)
			if err != nil {
				return err
			}
			_ = f.SetCellValue(sheet, cell, value)
		}
		feeTotal += row.StorageFee
	}

	totalLine := len(group.Rows) + 3
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", totalLine), "합계")
	_ = f.SetCellValue(sheet, fmt.Sprintf("L%d", totalLine), feeTotal)
	_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", totalLine+1), vatNote)
	return nil
}

func writeRollupSheet(f *excelize.File, sheet string, result *application.RunResult) {
	_ = f.SetCellValue(sheet, "A1", "월별 화주사 정산")
	_ = f.SetCellValue(sheet, "B1", billing.MonthKey(result.ReferenceDate))

	headers := []string{"화주사", "보관중", "보관종료", "서비스", "보관료 합계"}
	for col, title := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 2)
		_ = f.SetCellValue(sheet, cell, title)
	}
	for i, rollup := range result.Rollups {
		line := i + 3
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", line), rollup.VendorName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", line), rollup.Stored)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", line), rollup.Ended)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", line), rollup.Service)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", line), rollup.FeeTotal)
	}
}

// BuildInvoicePDF renders a per-vendor invoice summary. Core fonts cannot
// render Hangul, so the PDF carries the machine-readable vendor keys and
// totals; the XLSX export is the human-facing report.
func BuildInvoicePDF(result *application.RunResult) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Pallet Storage Invoice")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Reference: %s", result.ReferenceDate.Format("2006-01-02")))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Mode: %s", result.Mode))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Vendor", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Stored", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Ended", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Service", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Fee (KRW)", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	var feeTotal int64
	for _, rollup := range result.Rollups {
		pdf.CellFormat(60, 6, billing.NormalizeVendorName(rollup.VendorName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", rollup.Stored), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", rollup.Ended), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", rollup.Service), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%d", rollup.FeeTotal), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
		feeTotal += rollup.FeeTotal
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(135, 6, "Total (VAT excluded)", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, fmt.Sprintf("%d", feeTotal), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildLabelsPDF renders one label per pallet for warehouse floor printing.
func BuildLabelsPDF(rows []billing.SummaryRow) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 11)

	const labelsPerPage = 8
	for i, row := range rows {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(95, 8, row.PalletID, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(95, 6, fmt.Sprintf("Vendor: %s", billing.NormalizeVendorName(row.VendorName)), "LR", 0, "L", false, 0, "")
		pdf.Ln(-1)
		pdf.CellFormat(95, 6, fmt.Sprintf("Product: %s", billing.NormalizeVendorName(row.ProductName)), "LR", 0, "L", false, 0, "")
		pdf.Ln(-1)
		pdf.CellFormat(95, 6, fmt.Sprintf("Inbound: %s  Qty: %.0f", formatReportDate(row.InboundDate), row.RemainingQty), "LR", 0, "L", false, 0, "")
		pdf.Ln(-1)
		pdf.CellFormat(95, 6, fmt.Sprintf("Status: %s", row.Status), "LRB", 0, "L", false, 0, "")
		pdf.Ln(8)
	}
	if len(rows) == 0 {
		pdf.AddPage()
		pdf.Cell(0, 8, "No pallets")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func statusLabel(status billing.Status) string {
	switch status {
	case billing.StatusService:
		return "서비스"
	case billing.StatusStorageEnded:
		return "보관종료"
	case billing.StatusInUse:
		return "사용중"
	default:
		return "입고됨"
	}
}

func formatReportDate(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.Format(reportDateLayout)
}

// cellOrBlank renders excluded charges as blank cells so a suppressed fee is
// distinguishable from a zero fee.
func cellOrBlank(value int64, excluded bool) any {
	if excluded {
		return ""
	}
	return value
}

// sheetName makes a vendor name safe for use as a worksheet name and keeps
// it unique within the workbook.
func sheetName(vendor string, used map[string]int) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		default:
			return r
		}
	}, vendor)
	if name == "" {
		name = billing.UnspecifiedVendor
	}
	if len([]rune(name)) > 28 {
		name = string([]rune(name)[:28])
	}
	if count, ok := used[name]; ok {
		used[name] = count + 1
		name = fmt.Sprintf("%s-%d", name, count+1)
	} else {
		used[name] = 1
	}
	return name
}
