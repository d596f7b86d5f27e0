package billing

import "time"

// EventType classifies a pallet work event.
type EventType string

const (
	EventInbound  EventType = "inbound"
	EventInUse    EventType = "in_use"
	EventOutbound EventType = "outbound"
	EventService  EventType = "service"
)

// Intake labels as they appear on the warehouse form. Outbound is literally
// "storage ended" on the form.
const (
	labelInbound  = "입고"
	labelInUse    = "사용중"
	labelOutbound = "보관종료"
	labelService  = "서비스"
)

// ParseEventType maps a raw work-type label to an EventType. Both the Korean
// form labels and the canonical names are accepted.
func ParseEventType(label string) (EventType, error) {
	switch label {
	case labelInbound, string(EventInbound):
		return EventInbound, nil
	case labelInUse, string(EventInUse):
		return EventInUse, nil
	case labelOutbound, string(EventOutbound):
		return EventOutbound, nil
	case labelService, string(EventService):
		return EventService, nil
	default:
		return "", ErrUnknownEventType
	}
}

// UnspecifiedProduct is recorded when a form row carries no product name.
const UnspecifiedProduct = "무기입"

// RawEvent is one pallet work event from the intake log. Events are immutable
// and append-only; ordering on input is not guaranteed.
type RawEvent struct {
	EventID     string
	PalletID    string
	Type        EventType
	Quantity    float64
	Timestamp   time.Time
	ProductName string
	VendorName  string
}
