package billing

import (
	"math"
	"time"
)

// DefaultDailyRate is charged when neither a vendor override nor a monthly
// rate entry applies. Historically 16,200 won/month over an average month.
const DefaultDailyRate int64 = 533

// avgDaysPerMonth converts a monthly fee to a daily rate.
const avgDaysPerMonth = 30.44

// MonthKeyLayout formats a time as the "YYYY.MM" key used by the monthly rate
// table and the fee exclusion rule.
const MonthKeyLayout = "2006.01"

// MonthKey returns the calendar-month key for a timestamp.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// VendorFeeSetting is a per-vendor monthly storage fee override.
type VendorFeeSetting struct {
	VendorName string
	MonthlyFee int64
}

// MonthlyRate is a global fallback rate for one calendar month.
type MonthlyRate struct {
	YearMonth   string // "YYYY.MM"
	MonthlyRate int64
}

// FeeSchedule resolves daily storage rates. Missing configuration never
// blocks billing; resolution always falls through to DefaultDailyRate.
type FeeSchedule struct {
	vendorFees   map[string]int64 // keyed by normalized vendor name
	monthlyRates []MonthlyRate
}

// NewFeeSchedule builds a schedule from vendor overrides and the monthly rate
// table. Entries with non-positive fees are ignored.
func NewFeeSchedule(settings []VendorFeeSetting, rates []MonthlyRate) *FeeSchedule {
	fees := make(map[string]int64, len(settings))
	for _, setting := range settings {
		if setting.MonthlyFee <= 0 {
			continue
		}
		key := NormalizeVendorName(setting.VendorName)
		if key == UnspecifiedVendor {
			continue
		}
		if _, exists := fees[key]; !exists {
			fees[key] = setting.MonthlyFee
		}
	}
	return &FeeSchedule{vendorFees: fees, monthlyRates: rates}
}

// DailyRate resolves the per-day storage rate in effect for a vendor on a
// date. Preference order: vendor override, monthly rate table, default.
func (f *FeeSchedule) DailyRate(date time.Time, vendorName string) int64 {
	if f != nil && vendorName != "" {
		if fee, ok := f.vendorFees[NormalizeVendorName(vendorName)]; ok {
			return dailyFromMonthly(fee)
		}
	}
	if f != nil {
		key := MonthKey(date)
		for _, rate := range f.monthlyRates {
			if rate.YearMonth == key && rate.MonthlyRate > 0 {
				return dailyFromMonthly(rate.MonthlyRate)
			}
		}
	}
	return DefaultDailyRate
}

func dailyFromMonthly(monthly int64) int64 {
	return int64(math.Round(float64(monthly) / avgDaysPerMonth))
}
