package billing

import "time"

// SummaryRow is the billing output for one pallet, as written to the vendor
// report sections.
type SummaryRow struct {
	PalletID    string
	VendorName  string
	ProductName string

	InboundQty   float64
	OutboundQty  float64
	RemainingQty float64

	InboundDate    time.Time
	OutboundDate   time.Time
	StorageEndDate time.Time

	Status             Status
	BillingPeriodStart time.Time

	StorageDays int64
	StorageFee  int64

	// Excluded marks a storage-ended pallet whose end month is not the month
	// being billed. The report renders blank cells instead of zeros so a
	// suppressed fee is distinguishable from a genuinely free pallet.
	Excluded bool
}

// BuildSummaryRow turns an aggregated pallet state into its billing row for
// the month containing referenceDate. Active pallets are billed up to
// referenceDate; storage-ended pallets are billed up to their end date, and
// suppressed entirely when they ended outside the reference month. Service
// pallets are never billed. Data-quality problems produce zero-charge rows,
// never errors.
func BuildSummaryRow(summary *PalletSummary, referenceDate time.Time, schedule *FeeSchedule) SummaryRow {
	row := SummaryRow{
		PalletID:       summary.PalletID,
		VendorName:     summary.VendorName,
		ProductName:    summary.ProductName,
		InboundQty:     summary.InboundQty,
		OutboundQty:    summary.OutboundQty,
		RemainingQty:   summary.RemainingQty(),
		InboundDate:    summary.InboundDate(),
		OutboundDate:   summary.StorageEndedAt,
		StorageEndDate: summary.StorageEndedAt,
		Status:         summary.Status(),
	}

	if row.InboundDate.IsZero() {
		// Degenerate pallet with no qualifying event: emit the row with empty
		// dates and no fee.
		return row
	}

	switch row.Status {
	case StatusService:
		row.BillingPeriodStart = row.InboundDate
	case StatusStorageEnded:
		periodStart := laterOf(row.InboundDate, firstOfMonth(summary.StorageEndedAt))
		row.BillingPeriodStart = periodStart
		row.StorageDays, row.StorageFee = chargeOrZero(periodStart, summary.StorageEndedAt, summary.VendorName, schedule)
		if MonthKey(summary.StorageEndedAt) != MonthKey(referenceDate) {
			// The pallet left storage in another month; it must not be billed
			// again in this run.
			row.StorageDays = 0
			row.StorageFee = 0
			row.Excluded = true
		}
	default:
		periodStart := laterOf(row.InboundDate, firstOfMonth(referenceDate))
		row.BillingPeriodStart = periodStart
		row.StorageDays, row.StorageFee = chargeOrZero(periodStart, referenceDate, summary.VendorName, schedule)
	}

	return row
}

// chargeOrZero wraps CalculateFee for summary rows: a period that ends before
// it starts comes from noisy manual data and yields a zero charge rather than
// failing the whole run.
func chargeOrZero(start, end time.Time, vendorName string, schedule *FeeSchedule) (int64, int64) {
	if end.Before(start) {
		return 0, 0
	}
	charge, err := CalculateFee(start, end, vendorName, schedule)
	if err != nil {
		return 0, 0
	}
	return charge.Days, charge.Fee
}

// PreviousMonthReference returns the reference date for previous-month
// invoicing runs: the last day of the month before now.
func PreviousMonthReference(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 0, 0, 0, 0, 0, now.Location())
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
