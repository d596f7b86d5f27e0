package postgres

import (
	"context"
	"database/sql"
	"errors"

	billing "pallet-cloud/internal/billing/domain"
)

// FeeConfigRepository loads the billing reference tables.
type FeeConfigRepository struct {
	db *sql.DB
}

// NewFeeConfigRepository constructs a repository.
func NewFeeConfigRepository(db *sql.DB) *FeeConfigRepository {
	return &FeeConfigRepository{db: db}
}

// ListVendorFees loads per-vendor monthly fee overrides.
func (r *FeeConfigRepository) ListVendorFees(ctx context.Context) ([]billing.VendorFeeSetting, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("fee config repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT vendor_name, monthly_fee
FROM vendor_fees
ORDER BY vendor_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []billing.VendorFeeSetting
	for rows.Next() {
		var fee billing.VendorFeeSetting
		if err := rows.Scan(&fee.VendorName, &fee.MonthlyFee); err != nil {
			return nil, err
		}
		result = append(result, fee)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListMonthlyRates loads the month-keyed rate table.
func (r *FeeConfigRepository) ListMonthlyRates(ctx context.Context) ([]billing.MonthlyRate, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("fee config repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT year_month, monthly_rate
FROM monthly_rates
ORDER BY year_month ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []billing.MonthlyRate
	for rows.Next() {
		var rate billing.MonthlyRate
		if err := rows.Scan(&rate.YearMonth, &rate.MonthlyRate); err != nil {
			return nil, err
		}
		result = append(result, rate)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
