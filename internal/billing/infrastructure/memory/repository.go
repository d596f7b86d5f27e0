package memory

import (
	"context"
	"sync"

	billing "pallet-cloud/internal/billing/domain"
)

// EventRepository is an in-memory pallet event log.
type EventRepository struct {
	mu     sync.RWMutex
	events []billing.RawEvent
	seen   map[string]struct{}
}

// NewEventRepository constructs a repository.
func NewEventRepository() *EventRepository {
	return &EventRepository{seen: make(map[string]struct{})}
}

// ListEvents returns a copy of the stored log in append order.
func (r *EventRepository) ListEvents(ctx context.Context) ([]billing.RawEvent, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]billing.RawEvent, len(r.events))
	copy(out, r.events)
	return out, nil
}

// AppendEvent stores an event, absorbing duplicate event IDs.
func (r *EventRepository) AppendEvent(ctx context.Context, event billing.RawEvent) (bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.EventID != "" {
		if _, ok := r.seen[event.EventID]; ok {
			return false, nil
		}
		r.seen[event.EventID] = struct{}{}
	}
	r.events = append(r.events, event)
	return true, nil
}

// FeeConfigRepository holds billing reference data in memory.
type FeeConfigRepository struct {
	mu           sync.RWMutex
	vendorFees   []billing.VendorFeeSetting
	monthlyRates []billing.MonthlyRate
}

// NewFeeConfigRepository constructs a repository.
func NewFeeConfigRepository() *FeeConfigRepository {
	return &FeeConfigRepository{}
}

// SetVendorFees replaces the vendor fee table.
func (r *FeeConfigRepository) SetVendorFees(fees []billing.VendorFeeSetting) {
	r.mu.Lock()
	r.vendorFees = append([]billing.VendorFeeSetting(nil), fees...)
	r.mu.Unlock()
}

// SetMonthlyRates replaces the monthly rate table.
func (r *FeeConfigRepository) SetMonthlyRates(rates []billing.MonthlyRate) {
	r.mu.Lock()
	r.monthlyRates = append([]billing.MonthlyRate(nil), rates...)
	r.mu.Unlock()
}

// ListVendorFees returns the vendor fee table.
func (r *FeeConfigRepository) ListVendorFees(ctx context.Context) ([]billing.VendorFeeSetting, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]billing.VendorFeeSetting(nil), r.vendorFees...), nil
}

// ListMonthlyRates returns the monthly rate table.
func (r *FeeConfigRepository) ListMonthlyRates(ctx context.Context) ([]billing.MonthlyRate, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]billing.MonthlyRate(nil), r.monthlyRates...), nil
}

// SummaryRepository keeps settlement rows per run mode in memory.
type SummaryRepository struct {
	mu   sync.RWMutex
	rows map[string][]billing.SummaryRow
}

// NewSummaryRepository constructs a repository.
func NewSummaryRepository() *SummaryRepository {
	return &SummaryRepository{rows: make(map[string][]billing.SummaryRow)}
}

// ReplaceRows swaps the stored rows for a mode wholesale.
func (r *SummaryRepository) ReplaceRows(ctx context.Context, mode string, rows []billing.SummaryRow) error {
	_ = ctx
	copied := make([]billing.SummaryRow, len(rows))
	copy(copied, rows)
	r.mu.Lock()
	r.rows[mode] = copied
	r.mu.Unlock()
	return nil
}

// ListRows returns the rows persisted for a mode.
func (r *SummaryRepository) ListRows(ctx context.Context, mode string) ([]billing.SummaryRow, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]billing.SummaryRow(nil), r.rows[mode]...), nil
}
