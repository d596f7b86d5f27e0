package billing

import "time"

// PalletSummary is the accumulated lifecycle state for one pallet ID. It is
// rebuilt from scratch on every aggregation run; nothing is carried over
// between runs.
type PalletSummary struct {
	PalletID    string
	VendorName  string
	ProductName string

	// InboundCandidates collects the timestamps of every inbound, in-use and
	// service event. The effective inbound date is the minimum of this list;
	// in-use and service events act as backup inbound dates when no inbound
	// event was recorded.
	InboundCandidates []time.Time

	InboundQty  float64
	OutboundQty float64

	// StorageEndedAt is the latest outbound timestamp seen. The source system
	// tracked an outbound date and a storage-end date separately but always
	// wrote the same value to both.
	StorageEndedAt time.Time

	IsServicePallet bool
	IsInUse         bool
	HasStorageEnded bool

	LastEventAt time.Time
}

// RemainingQty returns inbound minus outbound quantity.
func (s *PalletSummary) RemainingQty() float64 {
	return s.InboundQty - s.OutboundQty
}

// InboundDate returns the earliest inbound-candidate timestamp, or the zero
// time when the pallet has no qualifying event.
func (s *PalletSummary) InboundDate() time.Time {
	var min time.Time
	for _, ts := range s.InboundCandidates {
		if min.IsZero() || ts.Before(min) {
			min = ts
		}
	}
	return min
}

// Status derives the pallet status. First matching flag wins.
func (s *PalletSummary) Status() Status {
	switch {
	case s.IsServicePallet:
		return StatusService
	case s.HasStorageEnded:
		return StatusStorageEnded
	case s.IsInUse:
		return StatusInUse
	default:
		return StatusInboundOnly
	}
}

// Status is the derived lifecycle state of a pallet.
type Status string

const (
	StatusService      Status = "service"
	StatusStorageEnded Status = "storage_ended"
	StatusInUse        Status = "in_use"
	StatusInboundOnly  Status = "inbound_only"
)

// Aggregate folds raw events into one summary per pallet ID. Events with an
// empty pallet ID are skipped; everything else contributes, however noisy.
// The fold is order-independent: quantities accumulate, timestamps reduce via
// max/min. The single exception is ProductName, which takes the value from
// whichever event carries the latest timestamp.
func Aggregate(events []RawEvent) map[string]*PalletSummary {
	summaries := make(map[string]*PalletSummary)

	for _, ev := range events {
		if ev.PalletID == "" {
			continue
		}

		s, ok := summaries[ev.PalletID]
		if !ok {
			s = &PalletSummary{
				PalletID:    ev.PalletID,
				VendorName:  ev.VendorName,
				ProductName: ev.ProductName,
				LastEventAt: ev.Timestamp,
			}
			summaries[ev.PalletID] = s
		}

		if ev.Timestamp.After(s.LastEventAt) {
			s.LastEventAt = ev.Timestamp
			s.ProductName = ev.ProductName
		}

		switch ev.Type {
		case EventInbound:
			s.InboundQty += ev.Quantity
			s.InboundCandidates = append(s.InboundCandidates, ev.Timestamp)
		case EventInUse:
			s.IsInUse = true
			s.InboundCandidates = append(s.InboundCandidates, ev.Timestamp)
		case EventOutbound:
			// Zero or missing quantity means the whole remaining stock exits.
			exitQty := ev.Quantity
			if exitQty <= 0 {
				exitQty = s.InboundQty
			}
			s.OutboundQty += exitQty
			if ev.Timestamp.After(s.StorageEndedAt) {
				s.StorageEndedAt = ev.Timestamp
			}
			s.HasStorageEnded = true
		case EventService:
			s.IsServicePallet = true
			s.InboundCandidates = append(s.InboundCandidates, ev.Timestamp)
		}
	}

	return summaries
}
