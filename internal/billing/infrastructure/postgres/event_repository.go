package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	billing "pallet-cloud/internal/billing/domain"
)

// EventRepository persists the append-only pallet event log.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository constructs a repository.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// ListEvents loads the full event log in arrival order.
func (r *EventRepository) ListEvents(ctx context.Context) ([]billing.RawEvent, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("event repo: nil db")
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT event_id, pallet_id, event_type, quantity, occurred_at, product_name, vendor_name
FROM pallet_events
ORDER BY received_at ASC, event_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []billing.RawEvent
	for rows.Next() {
		var ev billing.RawEvent
		var eventType string
		if err := rows.Scan(
			&ev.EventID,
			&ev.PalletID,
			&eventType,
			&ev.Quantity,
			&ev.Timestamp,
			&ev.ProductName,
			&ev.VendorName,
		); err != nil {
			return nil, err
		}
		ev.Type = billing.EventType(eventType)
		ev.Timestamp = ev.Timestamp.UTC()
		result = append(result, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AppendEvent inserts an event, absorbing duplicate event IDs. It reports
// false when the event was already stored.
func (r *EventRepository) AppendEvent(ctx context.Context, event billing.RawEvent) (bool, error) {
	if r == nil || r.db == nil {
		return false, errors.New("event repo: nil db")
	}
	if event.EventID == "" {
		return false, errors.New("event repo: empty event id")
	}
	result, err := r.db.ExecContext(ctx, `
INSERT INTO pallet_events (
	event_id, pallet_id, event_type, quantity, occurred_at, product_name, vendor_name, received_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (event_id) DO NOTHING`,
		event.EventID, event.PalletID, string(event.Type), event.Quantity,
		event.Timestamp.UTC(), event.ProductName, event.VendorName, time.Now().UTC(),
	)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
