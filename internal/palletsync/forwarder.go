package palletsync

import (
	"context"
	"log"

	billing "pallet-cloud/internal/billing/domain"
	"pallet-cloud/internal/observability/metrics"
)

const dateLayout = "2006-01-02"

// Forwarder mirrors intake events into the downstream pallet API. Forwarding
// is best effort: the local event log is the source of truth, and a
// downstream outage must never fail an intake request.
type Forwarder struct {
	client *Client
	logger *log.Logger
}

// NewForwarder constructs a forwarder. A nil client disables forwarding.
func NewForwarder(client *Client, logger *log.Logger) *Forwarder {
	if logger == nil {
		logger = log.Default()
	}
	return &Forwarder{client: client, logger: logger}
}

// Forward pushes one event downstream. Inbound and service events become
// inbound records; outbound events become outbound records; in-use events are
// local bookkeeping and are not mirrored.
func (f *Forwarder) Forward(ctx context.Context, event billing.RawEvent) {
	if f == nil || f.client == nil {
		return
	}

	switch event.Type {
	case billing.EventInbound, billing.EventService:
		record := InboundRecord{
			PalletID:    event.PalletID,
			CompanyName: event.VendorName,
			ProductName: event.ProductName,
			InDate:      event.Timestamp.Format(dateLayout),
			Quantity:    event.Quantity,
			IsService:   event.Type == billing.EventService,
		}
		result := metrics.ResultSuccess
		if err := f.client.PushInbound(ctx, record); err != nil {
			result = metrics.ResultError
			f.logger.Printf("pallet sync inbound failed: pallet=%s err=%v", event.PalletID, err)
		}
		metrics.IncSyncPush("inbound", result)
	case billing.EventOutbound:
		record := OutboundRecord{
			PalletID:    event.PalletID,
			CompanyName: event.VendorName,
			ProductName: event.ProductName,
			OutDate:     event.Timestamp.Format(dateLayout),
			Quantity:    event.Quantity,
		}
		result := metrics.ResultSuccess
		if err := f.client.PushOutbound(ctx, record); err != nil {
			result = metrics.ResultError
			f.logger.Printf("pallet sync outbound failed: pallet=%s err=%v", event.PalletID, err)
		}
		metrics.IncSyncPush("outbound", result)
	}
}
