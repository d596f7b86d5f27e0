package application

import (
	"context"
	"errors"
	"time"

	billing "pallet-cloud/internal/billing/domain"
	"pallet-cloud/internal/observability/metrics"
)

// RunMode selects the reference date for a settlement run.
type RunMode string

const (
	// ModeCurrent bills active pallets up to today; used for the live
	// dashboard.
	ModeCurrent RunMode = "current"
	// ModePrevious bills up to the last day of the prior month; used for
	// end-of-month invoicing. Events after the cutoff are left out of the
	// replay.
	ModePrevious RunMode = "previous"
)

// ParseRunMode validates a mode string, defaulting to current.
func ParseRunMode(value string) (RunMode, error) {
	switch value {
	case "", string(ModeCurrent):
		return ModeCurrent, nil
	case string(ModePrevious):
		return ModePrevious, nil
	default:
		return "", errors.New("summary service: mode must be current or previous")
	}
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// RunResult is the output of one settlement run.
type RunResult struct {
	Mode          RunMode
	ReferenceDate time.Time
	Rows          []billing.SummaryRow
	Groups        []billing.VendorGroup
	Rollups       []billing.VendorRollup
}

// SummaryService replays the full event log into per-pallet billing rows.
// Every run starts from scratch over the whole history, so duplicate or
// reordered upstream deliveries never accumulate stale state.
type SummaryService struct {
	events billing.EventRepository
	config billing.FeeConfigRepository
	rows   billing.SummaryRepository
	clock  Clock
}

// NewSummaryService constructs the service.
func NewSummaryService(
	events billing.EventRepository,
	config billing.FeeConfigRepository,
	rows billing.SummaryRepository,
	clock Clock,
) (*SummaryService, error) {
	if events == nil {
		return nil, errors.New("summary service: nil event repository")
	}
	if config == nil {
		return nil, errors.New("summary service: nil fee config repository")
	}
	if rows == nil {
		return nil, errors.New("summary service: nil summary repository")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &SummaryService{events: events, config: config, rows: rows, clock: clock}, nil
}

// Run executes one settlement pass and persists the resulting rows.
func (s *SummaryService) Run(ctx context.Context, mode RunMode) (*RunResult, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSummarizeRun(string(mode), result, time.Since(start))
	}()

	run, err := s.compute(ctx, mode)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	if err := s.rows.ReplaceRows(ctx, string(mode), run.Rows); err != nil {
		result = metrics.ResultError
		return nil, err
	}
	return run, nil
}

// Preview executes a settlement pass without persisting anything.
func (s *SummaryService) Preview(ctx context.Context, mode RunMode) (*RunResult, error) {
	return s.compute(ctx, mode)
}

// Rows returns the rows persisted by the latest run for a mode.
func (s *SummaryService) Rows(ctx context.Context, mode RunMode) ([]billing.SummaryRow, error) {
	return s.rows.ListRows(ctx, string(mode))
}

func (s *SummaryService) compute(ctx context.Context, mode RunMode) (*RunResult, error) {
	reference := s.clock.Now()
	if mode == ModePrevious {
		reference = billing.PreviousMonthReference(reference)
	}

	events, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	if mode == ModePrevious {
		events = dropEventsAfter(events, reference)
	}

	vendorFees, err := s.config.ListVendorFees(ctx)
	if err != nil {
		return nil, err
	}
	monthlyRates, err := s.config.ListMonthlyRates(ctx)
	if err != nil {
		return nil, err
	}
	schedule := billing.NewFeeSchedule(vendorFees, monthlyRates)

	summaries := billing.Aggregate(events)

	// Rows are emitted in first-seen pallet order so that vendor grouping
	// (and the spelling a merged vendor section displays) tracks the input
	// order of the event log.
	rows := make([]billing.SummaryRow, 0, len(summaries))
	seen := make(map[string]struct{}, len(summaries))
	for _, ev := range events {
		if ev.PalletID == "" {
			continue
		}
		if _, ok := seen[ev.PalletID]; ok {
			continue
		}
		seen[ev.PalletID] = struct{}{}
		rows = append(rows, billing.BuildSummaryRow(summaries[ev.PalletID], reference, schedule))
	}

	return &RunResult{
		Mode:          mode,
		ReferenceDate: reference,
		Rows:          rows,
		Groups:        billing.GroupByVendor(rows),
		Rollups:       billing.MonthlyVendorRollup(rows, billing.MonthKey(reference)),
	}, nil
}

func dropEventsAfter(events []billing.RawEvent, cutoff time.Time) []billing.RawEvent {
	kept := events[:0:0]
	for _, ev := range events {
		if ev.Timestamp.After(cutoff) {
			continue
		}
		kept = append(kept, ev)
	}
	return kept
}
