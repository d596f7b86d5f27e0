package interfaces

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"pallet-cloud/internal/billing/application"
	billing "pallet-cloud/internal/billing/domain"
)

func exportFixture() *application.RunResult {
	march := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	rows := []billing.SummaryRow{
		{
			PalletID:           "P1",
			VendorName:         "Acme",
			ProductName:        "widgets",
			InboundQty:         10,
			RemainingQty:       10,
			InboundDate:        march.AddDate(0, 0, 1),
			Status:             billing.StatusInboundOnly,
			BillingPeriodStart: march,
			StorageDays:        10,
			StorageFee:         10000,
		},
		{
			PalletID:           "P2",
			VendorName:         "Acme",
			Status:             billing.StatusStorageEnded,
			InboundDate:        march.AddDate(0, -1, 0),
			StorageEndDate:     march.AddDate(0, 0, -3),
			OutboundDate:       march.AddDate(0, 0, -3),
			BillingPeriodStart: march.AddDate(0, -1, 0),
			Excluded:           true,
		},
		{
			PalletID:           "P3",
			VendorName:         "한빛물류",
			InboundDate:        march,
			Status:             billing.StatusService,
			BillingPeriodStart: march,
		},
	}
	return &application.RunResult{
		Mode:          application.ModeCurrent,
		ReferenceDate: march.AddDate(0, 0, 9),
		Rows:          rows,
		Groups:        billing.GroupByVendor(rows),
		Rollups:       billing.MonthlyVendorRollup(rows, "2025.03"),
	}
}

func TestBuildVendorReportXLSX(t *testing.T) {
	payload, err := BuildVendorReportXLSX(exportFixture())
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	// Rollup sheet plus one sheet per vendor.
	if len(sheets) != 3 {
		t.Fatalf("expected 3 sheets, got %v", sheets)
	}

	title, err := f.GetCellValue("Acme", "A1")
	if err != nil {
		t.Fatalf("read vendor title: %v", err)
	}
	if title != "Acme" {
		t.Fatalf("vendor title mismatch: %q", title)
	}

	// Excluded rows render blank fee cells, and the totals line follows the
	// last data row with the VAT note underneath.
	fee, _ := f.GetCellValue("Acme", "L4")
	if fee != "" {
		t.Fatalf("excluded fee should be blank, got %q", fee)
	}
	total, _ := f.GetCellValue("Acme", "L5")
	if total != "10000" {
		t.Fatalf("total mismatch: %q", total)
	}
	note, _ := f.GetCellValue("Acme", "A6")
	if note != vatNote {
		t.Fatalf("vat note mismatch: %q", note)
	}

	rollupVendor, _ := f.GetCellValue("monthly-rollup", "A3")
	if rollupVendor != "Acme" {
		t.Fatalf("rollup vendor mismatch: %q", rollupVendor)
	}
}

func TestBuildInvoicePDF(t *testing.T) {
	payload, err := BuildInvoicePDF(exportFixture())
	if err != nil {
		t.Fatalf("build pdf: %v", err)
	}
	if !bytes.HasPrefix(payload, []byte("%PDF")) {
		t.Fatalf("not a pdf payload")
	}
}

func TestBuildLabelsPDF_EmptyRows(t *testing.T) {
	payload, err := BuildLabelsPDF(nil)
	if err != nil {
		t.Fatalf("build labels: %v", err)
	}
	if !bytes.HasPrefix(payload, []byte("%PDF")) {
		t.Fatalf("not a pdf payload")
	}
}

func TestSheetName(t *testing.T) {
	used := map[string]int{}
	if got := sheetName("Acme", used); got != "Acme" {
		t.Fatalf("plain name mismatch: %q", got)
	}
	if got := sheetName("Acme", used); got != "Acme-2" {
		t.Fatalf("duplicate name mismatch: %q", got)
	}
	if got := sheetName("a/b:c", used); got != "a_b_c" {
		t.Fatalf("sanitized name mismatch: %q", got)
	}
	if got := sheetName("", used); got != billing.UnspecifiedVendor {
		t.Fatalf("empty name mismatch: %q", got)
	}
}
