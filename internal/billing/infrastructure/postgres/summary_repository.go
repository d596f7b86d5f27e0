package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	billing "pallet-cloud/internal/billing/domain"
)

// SummaryRepository persists settlement rows per run mode.
type SummaryRepository struct {
	db *sql.DB
}

// NewSummaryRepository constructs a repository.
func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// ReplaceRows swaps the stored rows for a mode wholesale inside one
// transaction, so readers never observe a half-written run.
func (r *SummaryRepository) ReplaceRows(ctx context.Context, mode string, rows []billing.SummaryRow) error {
	if r == nil || r.db == nil {
		return errors.New("summary repo: nil db")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM pallet_summaries WHERE run_mode = $1`, mode); err != nil {
		_ = tx.Rollback()
		return err
	}
	for position, row := range rows {
		_, err := tx.ExecContext(ctx, `
INSERT INTO pallet_summaries (
	run_mode, position, pallet_id, vendor_name, product_name,
	inbound_qty, outbound_qty, remaining_qty,
	inbound_date, outbound_date, storage_end_date,
	status, billing_period_start, storage_days, storage_fee, excluded, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
			mode, position, row.PalletID, row.VendorName, row.ProductName,
			row.InboundQty, row.OutboundQty, row.RemainingQty,
			nullableTime(row.InboundDate), nullableTime(row.OutboundDate), nullableTime(row.StorageEndDate),
			string(row.Status), nullableTime(row.BillingPeriodStart),
			row.StorageDays, row.StorageFee, row.Excluded, time.Now().UTC(),
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ListRows loads the rows persisted for a mode in run order.
func (r *SummaryRepository) ListRows(ctx context.Context, mode string) ([]billing.SummaryRow, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("summary repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT pallet_id, vendor_name, product_name,
	inbound_qty, outbound_qty, remaining_qty,
	inbound_date, outbound_date, storage_end_date,
	status, billing_period_start, storage_days, storage_fee, excluded
FROM pallet_summaries
WHERE run_mode = $1
ORDER BY position ASC`, mode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []billing.SummaryRow
	for rows.Next() {
		var row billing.SummaryRow
		var status string
		var inbound, outbound, ended, periodStart sql.NullTime
		if err := rows.Scan(
			&row.PalletID, &row.VendorName, &row.ProductName,
			&row.InboundQty, &row.OutboundQty, &row.RemainingQty,
			&inbound, &outbound, &ended,
			&status, &periodStart, &row.StorageDays, &row.StorageFee, &row.Excluded,
		); err != nil {
			return nil, err
		}
		row.Status = billing.Status(status)
		row.InboundDate = timeOrZero(inbound)
		row.OutboundDate = timeOrZero(outbound)
		row.StorageEndDate = timeOrZero(ended)
		row.BillingPeriodStart = timeOrZero(periodStart)
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullableTime(value time.Time) sql.NullTime {
	if value.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: value.UTC(), Valid: true}
}

func timeOrZero(value sql.NullTime) time.Time {
	if !value.Valid {
		return time.Time{}
	}
	return value.Time.UTC()
}
