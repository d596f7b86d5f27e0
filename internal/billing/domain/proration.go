package billing

import (
	"math"
	"time"
)

// Charge is the result of prorating a storage period.
type Charge struct {
	Days int64
	Fee  int64
}

// CalculateFee prorates the storage fee for [start, end] across calendar
// months. Each month contributes ceil(span/24h) days at the rate in effect on
// the month's first day; interior months end at the last millisecond of the
// month, so the arithmetic reproduces the source system's billing to the won.
// The total is rounded up to the nearest 100.
func CalculateFee(start, end time.Time, vendorName string, schedule *FeeSchedule) (Charge, error) {
	if schedule == nil {
		return Charge{}, ErrNilSchedule
	}
	if end.Before(start) {
		return Charge{}, ErrInvalidPeriod
	}

	var totalDays, totalFee int64
	current := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	for !current.After(end) {
		nextMonth := time.Date(current.Year(), current.Month()+1, 1, 0, 0, 0, 0, current.Location())

		rangeStart := current
		if rangeStart.Before(start) {
			rangeStart = start
		}
		rangeEnd := end
		if nextMonth.Before(end) || nextMonth.Equal(end) {
			rangeEnd = nextMonth.Add(-time.Millisecond)
		}

		days := ceilDays(rangeEnd.Sub(rangeStart))
		totalDays += days
		totalFee += schedule.DailyRate(current, vendorName) * days

		current = nextMonth
	}

	return Charge{Days: totalDays, Fee: roundUpTo100(totalFee)}, nil
}

func ceilDays(d time.Duration) int64 {
	return int64(math.Ceil(float64(d) / float64(24*time.Hour)))
}

func roundUpTo100(fee int64) int64 {
	return int64(math.Ceil(float64(fee)/100)) * 100
}
