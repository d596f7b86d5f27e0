package application

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	billing "pallet-cloud/internal/billing/domain"
)

func TestScheduler_ShouldRunOncePerMonth(t *testing.T) {
	svc, _ := newTestService(t, time.Now(), nil, nil)
	cfg := AutomationConfig{Schedule: ScheduleConfig{MonthlyRunDay: 1, RunAt: "02:00"}, ReportDir: t.TempDir()}
	s := NewScheduler(svc, cfg, nil, nil, nil)

	window := time.Date(2025, time.February, 1, 2, 0, 30, 0, time.UTC)
	if !s.shouldRun(window) {
		t.Fatalf("expected run inside the window")
	}
	if s.shouldRun(window.AddDate(0, 0, 1)) {
		t.Fatalf("wrong day should not run")
	}
	if s.shouldRun(window.Add(time.Minute)) {
		t.Fatalf("wrong minute should not run")
	}

	s.lastRun = window
	if s.shouldRun(window) {
		t.Fatalf("second tick in the same month should not run")
	}
	if !s.shouldRun(window.AddDate(0, 1, 0)) {
		t.Fatalf("next month should run again")
	}
}

func TestScheduler_RunOnceArchivesReport(t *testing.T) {
	now := time.Date(2025, time.February, 1, 2, 0, 0, 0, time.UTC)
	events := []billing.RawEvent{
		{
			EventID:    "e1",
			PalletID:   "P1",
			Type:       billing.EventInbound,
			Quantity:   5,
			Timestamp:  time.Date(2025, time.January, 5, 9, 0, 0, 0, time.UTC),
			VendorName: "Acme",
		},
	}
	svc, _ := newTestService(t, now, events, nil)

	dir := t.TempDir()
	cfg := AutomationConfig{Schedule: ScheduleConfig{MonthlyRunDay: 1, RunAt: "02:00"}, ReportDir: dir}
	render := func(result *RunResult) ([]byte, error) {
		if result.Mode != ModePrevious {
			t.Fatalf("archive should render the closing run, got mode %s", result.Mode)
		}
		return []byte("workbook"), nil
	}
	s := NewScheduler(svc, cfg, render, fixedClock{now: now}, nil)

	s.runOnce(context.Background(), now)

	// Closing reference is January, so the archive carries the January key.
	payload, err := os.ReadFile(filepath.Join(dir, "settlement-2025.01.xlsx"))
	if err != nil {
		t.Fatalf("read archived report: %v", err)
	}
	if string(payload) != "workbook" {
		t.Fatalf("archived payload mismatch: %q", payload)
	}
}

func TestLoadAutomationConfig_RejectsBadRunDay(t *testing.T) {
	t.Setenv("BILLING_MONTHLY_RUN_DAY", "31")
	if _, err := LoadAutomationConfig(); err == nil {
		t.Fatalf("expected error for run day outside 1..28")
	}
}
