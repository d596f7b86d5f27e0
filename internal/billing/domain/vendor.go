package billing

import (
	"regexp"
	"strings"
)

// UnspecifiedVendor groups rows whose vendor name is empty or reduces to
// nothing after normalization.
const UnspecifiedVendor = "미지정"

var vendorNameStrip = regexp.MustCompile(`[^0-9A-Za-z_가-힣]`)

// NormalizeVendorName canonicalizes a vendor display name for grouping and
// fee lookups: case-folded, whitespace and punctuation removed, keeping only
// word characters and Hangul.
func NormalizeVendorName(name string) string {
	normalized := strings.ToLower(name)
	normalized = vendorNameStrip.ReplaceAllString(normalized, "")
	if normalized == "" {
		return UnspecifiedVendor
	}
	return normalized
}

// VendorGroup is one vendor's report section.
type VendorGroup struct {
	// VendorName is the first raw spelling seen for this normalized key;
	// differently-spelled equivalents merge under it.
	VendorName string
	Rows       []SummaryRow
}

// GroupByVendor splits summary rows into per-vendor sections keyed by the
// normalized vendor name, preserving first-seen order of vendors and of rows
// within each section.
func GroupByVendor(rows []SummaryRow) []VendorGroup {
	groups := make([]VendorGroup, 0)
	index := make(map[string]int)

	for _, row := range rows {
		raw := row.VendorName
		if raw == "" {
			raw = UnspecifiedVendor
		}
		key := NormalizeVendorName(raw)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, VendorGroup{VendorName: raw})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}

	return groups
}

// VendorRollup is one vendor's line in the monthly summary: pallet counts by
// state and the month's storage fee total.
type VendorRollup struct {
	YearMonth  string
	VendorName string
	Stored     int
	Ended      int
	Service    int
	FeeTotal   int64
}

// MonthlyVendorRollup aggregates summary rows into per-vendor monthly lines.
// Only rows whose billing period starts in the reference month count, matching
// the source report. Grouping here is by raw vendor name, not the normalized
// key; the per-vendor report sections normalize, the rollup never did.
func MonthlyVendorRollup(rows []SummaryRow, referenceMonth string) []VendorRollup {
	rollups := make([]VendorRollup, 0)
	index := make(map[string]int)

	for _, row := range rows {
		if row.BillingPeriodStart.IsZero() || MonthKey(row.BillingPeriodStart) != referenceMonth {
			continue
		}
		vendor := row.VendorName
		if vendor == "" {
			vendor = UnspecifiedVendor
		}

		i, ok := index[vendor]
		if !ok {
			i = len(rollups)
			index[vendor] = i
			rollups = append(rollups, VendorRollup{YearMonth: referenceMonth, VendorName: vendor})
		}

		switch row.Status {
		case StatusService:
			rollups[i].Service++
		case StatusStorageEnded:
			rollups[i].Ended++
			if !row.Excluded {
				rollups[i].FeeTotal += row.StorageFee
			}
		default:
			rollups[i].Stored++
			rollups[i].FeeTotal += row.StorageFee
		}
	}

	return rollups
}
