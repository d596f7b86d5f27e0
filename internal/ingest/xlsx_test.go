package ingest

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	billing "pallet-cloud/internal/billing/domain"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("set cell %s: %v", cell, err)
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return &buf
}

func TestLoadWorkbook(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"타임스탬프", "파레트 ID", "작업 유형", "작업 수량", "품목명", "화주사"},
		{"2025-06-17", "P-1", "입고", "10", "widgets", "Acme"},
		{"2025-06-20", "P-1", "보관종료", "10", "widgets", "Acme"},
		// No pallet ID: skipped silently.
		{"2025-06-21", "", "입고", "3", "", "Acme"},
		// Unknown work type: skipped with a log line.
		{"2025-06-22", "P-2", "반품", "1", "", "Acme"},
	})

	result, err := LoadWorkbook(buf, DefaultColumnNames(), time.UTC, nil)
	if err != nil {
		t.Fatalf("load workbook: %v", err)
	}
	if len(result.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result.Events))
	}
	if result.Skipped != 2 {
		t.Fatalf("expected 2 skipped rows, got %d", result.Skipped)
	}
	if result.Events[0].Type != billing.EventInbound || result.Events[1].Type != billing.EventOutbound {
		t.Fatalf("event types mismatch: %+v", result.Events)
	}
	for i, event := range result.Events {
		if event.EventID == "" {
			t.Fatalf("event %d: missing derived id", i)
		}
	}
}

func TestLoadWorkbook_EmptySheet(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"타임스탬프", "파레트 ID", "작업 유형"},
	})
	if _, err := LoadWorkbook(buf, DefaultColumnNames(), time.UTC, nil); err == nil {
		t.Fatalf("expected error for header-only workbook")
	}
}
