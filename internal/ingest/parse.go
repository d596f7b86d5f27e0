package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	billing "pallet-cloud/internal/billing/domain"
)

var (
	// ErrEmptyPalletID marks a form row without a pallet ID. Such rows are
	// skipped, not failed.
	ErrEmptyPalletID = errors.New("ingest: empty pallet id")

	errMissingColumn = errors.New("ingest: missing required column")
)

// ColumnNames maps the logical event fields to sheet header cells. The
// defaults are the labels of the original warehouse form.
type ColumnNames struct {
	Timestamp string
	PalletID  string
	WorkType  string
	Quantity  string
	Product   string
	Vendor    string
}

// DefaultColumnNames returns the original form headers.
func DefaultColumnNames() ColumnNames {
	return ColumnNames{
		Timestamp: "타임스탬프",
		PalletID:  "파레트 ID",
		WorkType:  "작업 유형",
		Quantity:  "작업 수량",
		Product:   "품목명",
		Vendor:    "화주사",
	}
}

// RowParser converts sheet rows into raw events using a header row to locate
// columns, so column reordering in the source sheet does not break ingestion.
type RowParser struct {
	timestampIdx int
	palletIdx    int
	workTypeIdx  int
	quantityIdx  int
	productIdx   int
	vendorIdx    int
	loc          *time.Location
}

// NewRowParser locates the configured columns in the header row. Timestamp,
// pallet ID and work type are required; the rest fall back to empty values
// when their column is absent.
func NewRowParser(header []string, cols ColumnNames, loc *time.Location) (*RowParser, error) {
	if loc == nil {
		loc = time.UTC
	}
	p := &RowParser{
		timestampIdx: indexOf(header, cols.Timestamp),
		palletIdx:    indexOf(header, cols.PalletID),
		workTypeIdx:  indexOf(header, cols.WorkType),
		quantityIdx:  indexOf(header, cols.Quantity),
		productIdx:   indexOf(header, cols.Product),
		vendorIdx:    indexOf(header, cols.Vendor),
		loc:          loc,
	}
	if p.timestampIdx < 0 {
		return nil, fmt.Errorf("%w: %s", errMissingColumn, cols.Timestamp)
	}
	if p.palletIdx < 0 {
		return nil, fmt.Errorf("%w: %s", errMissingColumn, cols.PalletID)
	}
	if p.workTypeIdx < 0 {
		return nil, fmt.Errorf("%w: %s", errMissingColumn, cols.WorkType)
	}
	return p, nil
}

// Parse converts one data row. The event ID is derived from the row content,
// so re-loading the same sheet produces the same IDs and duplicates are
// absorbed downstream.
func (p *RowParser) Parse(row []string) (billing.RawEvent, error) {
	palletID := strings.TrimSpace(cell(row, p.palletIdx))
	if palletID == "" {
		return billing.RawEvent{}, ErrEmptyPalletID
	}

	eventType, err := billing.ParseEventType(strings.TrimSpace(cell(row, p.workTypeIdx)))
	if err != nil {
		return billing.RawEvent{}, fmt.Errorf("ingest: pallet %s: %w", palletID, err)
	}

	ts, err := ParseTimestamp(cell(row, p.timestampIdx), p.loc)
	if err != nil {
		return billing.RawEvent{}, fmt.Errorf("ingest: pallet %s: %w", palletID, err)
	}

	product := strings.TrimSpace(cell(row, p.productIdx))
	if product == "" {
		product = billing.UnspecifiedProduct
	}

	event := billing.RawEvent{
		PalletID:    palletID,
		Type:        eventType,
		Quantity:    coerceQuantity(cell(row, p.quantityIdx)),
		Timestamp:   ts,
		ProductName: product,
		VendorName:  strings.TrimSpace(cell(row, p.vendorIdx)),
	}
	event.EventID = deriveEventID(event)
	return event, nil
}

func deriveEventID(event billing.RawEvent) string {
	sum := sha256.Sum256([]byte(strings.Join([]string{
		event.PalletID,
		string(event.Type),
		event.Timestamp.UTC().Format(time.RFC3339),
		strconv.FormatFloat(event.Quantity, 'f', -1, 64),
		event.VendorName,
	}, "|")))
	return hex.EncodeToString(sum[:16])
}

// coerceQuantity mirrors the form behavior: anything that is not a number
// counts as zero.
func coerceQuantity(value string) float64 {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return 0
	}
	qty, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return qty
}

func indexOf(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, cell := range header {
		if strings.TrimSpace(cell) == name {
			return i
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
