package ingest

import (
	"errors"
	"io"
	"log"
	"time"

	"github.com/xuri/excelize/v2"

	billing "pallet-cloud/internal/billing/domain"
)

// ErrEmptySheet is returned when the workbook has no data rows.
var ErrEmptySheet = errors.New("ingest: empty sheet")

// LoadResult reports what a workbook load produced.
type LoadResult struct {
	Events  []billing.RawEvent
	Skipped int
}

// LoadWorkbook reads the first sheet of an intake workbook exported from the
// old form system. The first row is the header; bad rows are logged and
// skipped so one typo cannot block a whole backfill.
func LoadWorkbook(r io.Reader, cols ColumnNames, loc *time.Location, logger *log.Logger) (LoadResult, error) {
	if logger == nil {
		logger = log.Default()
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return LoadResult{}, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return LoadResult{}, ErrEmptySheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return LoadResult{}, err
	}
	if len(rows) < 2 {
		return LoadResult{}, ErrEmptySheet
	}

	parser, err := NewRowParser(rows[0], cols, loc)
	if err != nil {
		return LoadResult{}, err
	}

	var result LoadResult
	for i, row := range rows[1:] {
		event, err := parser.Parse(row)
		if err != nil {
			if !errors.Is(err, ErrEmptyPalletID) {
				logger.Printf("workbook row %d skipped: %v", i+2, err)
			}
			result.Skipped++
			continue
		}
		result.Events = append(result.Events, event)
	}
	return result, nil
}
