package billing

import "context"

// EventRepository reads the append-only pallet event log.
type EventRepository interface {
	ListEvents(ctx context.Context) ([]RawEvent, error)
}

// EventWriter appends intake events. Append reports false when the event ID
// was already stored, which is how duplicate deliveries are absorbed.
type EventWriter interface {
	AppendEvent(ctx context.Context, event RawEvent) (bool, error)
}

// FeeConfigRepository loads the externally managed billing reference data.
type FeeConfigRepository interface {
	ListVendorFees(ctx context.Context) ([]VendorFeeSetting, error)
	ListMonthlyRates(ctx context.Context) ([]MonthlyRate, error)
}

// SummaryRepository persists the rows produced by a settlement run. Each run
// replaces the previous rows for its mode wholesale; summaries are never
// patched incrementally.
type SummaryRepository interface {
	ReplaceRows(ctx context.Context, mode string, rows []SummaryRow) error
	ListRows(ctx context.Context, mode string) ([]SummaryRow, error)
}
