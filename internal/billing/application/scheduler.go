package application

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	billing "pallet-cloud/internal/billing/domain"
)

// ReportRenderer turns a closing run into a report payload for archival.
type ReportRenderer func(*RunResult) ([]byte, error)

// Scheduler triggers the previous-month closing run once a month. The closing
// run replays the event log with the last day of the prior month as the
// reference date, which is how invoices are frozen after a month ends.
type Scheduler struct {
	summaries *SummaryService
	schedule  ScheduleConfig
	reportDir string
	render    ReportRenderer
	clock     Clock
	logger    *log.Logger

	lastRun time.Time
}

// NewScheduler constructs a Scheduler. When render is non-nil the closing
// report is written into cfg.ReportDir after each successful run.
func NewScheduler(summaries *SummaryService, cfg AutomationConfig, render ReportRenderer, clock Clock, logger *log.Logger) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		summaries: summaries,
		schedule:  cfg.Schedule,
		reportDir: cfg.ReportDir,
		render:    render,
		clock:     clock,
		logger:    logger,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	if s == nil || s.summaries == nil {
		return
	}
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.clock.Now().UTC()
			if !s.shouldRun(now) {
				continue
			}
			s.runOnce(ctx, now)
		}
	}
}

func (s *Scheduler) shouldRun(now time.Time) bool {
	if now.Day() != s.schedule.MonthlyRunDay {
		return false
	}
	hour, minute, err := parseRunAt(s.schedule.RunAt)
	if err != nil {
		return false
	}
	if now.Hour() != hour || now.Minute() != minute {
		return false
	}
	// One run per month even if the loop ticks twice inside the window.
	return s.lastRun.IsZero() ||
		s.lastRun.Year() != now.Year() || s.lastRun.Month() != now.Month()
}

func (s *Scheduler) runOnce(ctx context.Context, now time.Time) {
	s.lastRun = now
	result, err := s.summaries.Run(ctx, ModePrevious)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("monthly closing run failed: %v", err)
		}
		return
	}
	if s.logger != nil {
		s.logger.Printf("monthly closing run done: reference=%s rows=%d",
			result.ReferenceDate.Format("2006-01-02"), len(result.Rows))
	}
	s.archive(result)
}

func (s *Scheduler) archive(result *RunResult) {
	if s.render == nil || s.reportDir == "" {
		return
	}
	payload, err := s.render(result)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("closing report render failed: %v", err)
		}
		return
	}
	if err := os.MkdirAll(s.reportDir, 0o755); err != nil {
		if s.logger != nil {
			s.logger.Printf("closing report dir failed: %v", err)
		}
		return
	}
	path := filepath.Join(s.reportDir, fmt.Sprintf("settlement-%s.xlsx", billing.MonthKey(result.ReferenceDate)))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		if s.logger != nil {
			s.logger.Printf("closing report write failed: %v", err)
		}
		return
	}
	if s.logger != nil {
		s.logger.Printf("closing report archived: %s", path)
	}
}

func parseRunAt(value string) (int, int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}
