package billing

import (
	"testing"
	"time"
)

func TestBuildSummaryRow_ServicePalletNeverBilled(t *testing.T) {
	inbound := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	summary := &PalletSummary{
		PalletID:          "P2",
		VendorName:        "Acme",
		InboundCandidates: []time.Time{inbound},
		IsServicePallet:   true,
	}

	row := BuildSummaryRow(summary, time.Date(2025, time.March, 20, 0, 0, 0, 0, time.UTC), acmeSchedule())
	if row.Status != StatusService {
		t.Fatalf("status mismatch: got=%s want=%s", row.Status, StatusService)
	}
	if row.StorageDays != 0 || row.StorageFee != 0 {
		t.Fatalf("service pallet billed: days=%d fee=%d", row.StorageDays, row.StorageFee)
	}
	if !row.InboundDate.Equal(inbound) {
		t.Fatalf("inbound date mismatch: got=%v want=%v", row.InboundDate, inbound)
	}
	if !row.BillingPeriodStart.Equal(inbound) {
		t.Fatalf("billing start mismatch: got=%v want=%v", row.BillingPeriodStart, inbound)
	}
}

func TestBuildSummaryRow_StorageEndedInReferenceMonth(t *testing.T) {
	inbound := time.Date(2025, time.January, 5, 9, 0, 0, 0, time.UTC)
	ended := time.Date(2025, time.January, 20, 10, 30, 0, 0, time.UTC)
	summary := &PalletSummary{
		PalletID:          "P1",
		VendorName:        "Acme",
		InboundQty:        10,
		OutboundQty:       10,
		InboundCandidates: []time.Time{inbound},
		StorageEndedAt:    ended,
		HasStorageEnded:   true,
	}

	reference := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	row := BuildSummaryRow(summary, reference, acmeSchedule())
	if row.Status != StatusStorageEnded {
		t.Fatalf("status mismatch: got=%s", row.Status)
	}
	if row.Excluded {
		t.Fatalf("row should not be excluded in the end month")
	}
	if row.StorageDays != 16 || row.StorageFee != 16000 {
		t.Fatalf("charge mismatch: days=%d fee=%d want 16/16000", row.StorageDays, row.StorageFee)
	}
	if !row.BillingPeriodStart.Equal(inbound) {
		t.Fatalf("billing start mismatch: got=%v want=%v", row.BillingPeriodStart, inbound)
	}
}

func TestBuildSummaryRow_StorageEndedOutsideReferenceMonthExcluded(t *testing.T) {
	inbound := time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC)
	ended := time.Date(2025, time.January, 31, 18, 0, 0, 0, time.UTC)
	summary := &PalletSummary{
		PalletID:          "P3",
		VendorName:        "Acme",
		InboundCandidates: []time.Time{inbound},
		StorageEndedAt:    ended,
		HasStorageEnded:   true,
	}

	// Previous-month run targeting January keeps the fee.
	january := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)
	row := BuildSummaryRow(summary, january, acmeSchedule())
	if row.Excluded {
		t.Fatalf("january reference should keep the fee")
	}
	if row.StorageFee == 0 {
		t.Fatalf("expected a storage fee for the end month")
	}

	// A later run (reference in March) must suppress it.
	march := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
	row = BuildSummaryRow(summary, march, acmeSchedule())
	if !row.Excluded {
		t.Fatalf("march reference should exclude the fee")
	}
	if row.StorageDays != 0 || row.StorageFee != 0 {
		t.Fatalf("excluded row still billed: days=%d fee=%d", row.StorageDays, row.StorageFee)
	}
	if row.BillingPeriodStart.IsZero() {
		t.Fatalf("billing start should still be reported for excluded rows")
	}
}

func TestBuildSummaryRow_ActivePalletBilledToReference(t *testing.T) {
	inbound := time.Date(2025, time.February, 20, 0, 0, 0, 0, time.UTC)
	summary := &PalletSummary{
		PalletID:          "P5",
		VendorName:        "Acme",
		InboundQty:        2,
		InboundCandidates: []time.Time{inbound},
	}

	reference := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	row := BuildSummaryRow(summary, reference, acmeSchedule())
	if row.Status != StatusInboundOnly {
		t.Fatalf("status mismatch: got=%s", row.Status)
	}
	// Billing restarts at the reference month's first day for held-over
	// pallets.
	wantStart := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !row.BillingPeriodStart.Equal(wantStart) {
		t.Fatalf("billing start mismatch: got=%v want=%v", row.BillingPeriodStart, wantStart)
	}
	if row.StorageDays != 9 {
		t.Fatalf("days mismatch: got=%d want=9", row.StorageDays)
	}
	if row.StorageFee != 9000 {
		t.Fatalf("fee mismatch: got=%d want=9000", row.StorageFee)
	}
}

func TestBuildSummaryRow_DegenerateWithoutInboundDate(t *testing.T) {
	summary := &PalletSummary{
		PalletID:        "P6",
		VendorName:      "Acme",
		HasStorageEnded: true,
		StorageEndedAt:  time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC),
	}

	row := BuildSummaryRow(summary, time.Date(2025, time.May, 31, 0, 0, 0, 0, time.UTC), acmeSchedule())
	if !row.BillingPeriodStart.IsZero() {
		t.Fatalf("expected empty billing start, got %v", row.BillingPeriodStart)
	}
	if row.StorageDays != 0 || row.StorageFee != 0 {
		t.Fatalf("degenerate row billed: days=%d fee=%d", row.StorageDays, row.StorageFee)
	}
}

func TestBuildSummaryRow_InboundAfterStorageEndYieldsZeroCharge(t *testing.T) {
	// Manual entry noise: the only inbound candidate is after the outbound
	// event. The row is emitted with a zero charge instead of failing.
	summary := &PalletSummary{
		PalletID:          "P7",
		VendorName:        "Acme",
		InboundCandidates: []time.Time{time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)},
		StorageEndedAt:    time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC),
		HasStorageEnded:   true,
	}

	row := BuildSummaryRow(summary, time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), acmeSchedule())
	if row.StorageDays != 0 || row.StorageFee != 0 {
		t.Fatalf("expected zero charge, got days=%d fee=%d", row.StorageDays, row.StorageFee)
	}
}

func TestPreviousMonthReference(t *testing.T) {
	now := time.Date(2025, time.March, 14, 15, 9, 0, 0, time.UTC)
	got := PreviousMonthReference(now)
	want := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("previous month reference mismatch: got=%v want=%v", got, want)
	}

	jan := PreviousMonthReference(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC))
	if !jan.Equal(time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("year boundary mismatch: got=%v", jan)
	}
}
