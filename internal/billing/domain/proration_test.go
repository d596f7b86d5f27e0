package billing

import (
	"errors"
	"testing"
	"time"
)

func acmeSchedule() *FeeSchedule {
	return NewFeeSchedule([]VendorFeeSetting{{VendorName: "Acme", MonthlyFee: 30440}}, nil)
}

func TestCalculateFee_SingleMonth(t *testing.T) {
	// Form timestamps carry time-of-day, so the span Jan 5 09:00 .. Jan 20
	// 10:30 covers 15 days and change and bills as 16.
	start := time.Date(2025, time.January, 5, 9, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 20, 10, 30, 0, 0, time.UTC)

	charge, err := CalculateFee(start, end, "Acme", acmeSchedule())
	if err != nil {
		t.Fatalf("calculate fee: %v", err)
	}
	if charge.Days != 16 {
		t.Fatalf("days mismatch: got=%d want=16", charge.Days)
	}
	if charge.Fee != 16000 {
		t.Fatalf("fee mismatch: got=%d want=16000", charge.Fee)
	}
}

func TestCalculateFee_SplitsAtMonthBoundary(t *testing.T) {
	schedule := NewFeeSchedule(nil, []MonthlyRate{
		{YearMonth: "2025.01", MonthlyRate: 30440}, // 1000/day
		{YearMonth: "2025.02", MonthlyRate: 15220}, // 500/day
	})
	start := time.Date(2025, time.January, 30, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)

	charge, err := CalculateFee(start, end, "", schedule)
	if err != nil {
		t.Fatalf("calculate fee: %v", err)
	}
	// January: Jan 30 00:00 .. Jan 31 23:59:59.999 -> ceil(1.99d) = 2 days.
	// February: Feb 1 00:00 .. Feb 3 00:00 -> 2 days.
	if charge.Days != 4 {
		t.Fatalf("days mismatch: got=%d want=4", charge.Days)
	}
	if charge.Fee != 3000 {
		t.Fatalf("fee mismatch: got=%d want=3000", charge.Fee)
	}
}

func TestCalculateFee_RoundsUpToHundred(t *testing.T) {
	schedule := NewFeeSchedule(nil, nil) // default 533/day
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC)

	charge, err := CalculateFee(start, end, "", schedule)
	if err != nil {
		t.Fatalf("calculate fee: %v", err)
	}
	if charge.Days != 3 {
		t.Fatalf("days mismatch: got=%d want=3", charge.Days)
	}
	// 3 * 533 = 1599 -> 1600.
	if charge.Fee != 1600 {
		t.Fatalf("fee mismatch: got=%d want=1600", charge.Fee)
	}
}

func TestCalculateFee_AlwaysMultipleOfHundred(t *testing.T) {
	schedule := NewFeeSchedule(nil, nil)
	start := time.Date(2025, time.January, 3, 14, 22, 0, 0, time.UTC)
	for i := 0; i < 200; i++ {
		end := start.Add(time.Duration(i) * 13 * time.Hour)
		charge, err := CalculateFee(start, end, "", schedule)
		if err != nil {
			t.Fatalf("calculate fee at step %d: %v", i, err)
		}
		if charge.Fee%100 != 0 {
			t.Fatalf("fee %d at step %d is not a multiple of 100", charge.Fee, i)
		}
	}
}

func TestCalculateFee_MonotonicInEnd(t *testing.T) {
	schedule := acmeSchedule()
	start := time.Date(2025, time.January, 10, 8, 0, 0, 0, time.UTC)

	var lastFee int64 = -1
	for i := 0; i < 120; i++ {
		end := start.Add(time.Duration(i) * 24 * time.Hour)
		charge, err := CalculateFee(start, end, "Acme", schedule)
		if err != nil {
			t.Fatalf("calculate fee at day %d: %v", i, err)
		}
		if charge.Fee < lastFee {
			t.Fatalf("fee decreased at day %d: %d -> %d", i, lastFee, charge.Fee)
		}
		lastFee = charge.Fee
	}
}

func TestCalculateFee_EndBeforeStart(t *testing.T) {
	start := time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)

	_, err := CalculateFee(start, end, "Acme", acmeSchedule())
	if !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestCalculateFee_ZeroSpan(t *testing.T) {
	at := time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC)
	charge, err := CalculateFee(at, at, "Acme", acmeSchedule())
	if err != nil {
		t.Fatalf("calculate fee: %v", err)
	}
	if charge.Days != 0 || charge.Fee != 0 {
		t.Fatalf("expected zero charge, got days=%d fee=%d", charge.Days, charge.Fee)
	}
}

func TestCalculateFee_NilSchedule(t *testing.T) {
	at := time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC)
	_, err := CalculateFee(at, at.Add(time.Hour), "Acme", nil)
	if !errors.Is(err, ErrNilSchedule) {
		t.Fatalf("expected ErrNilSchedule, got %v", err)
	}
}
