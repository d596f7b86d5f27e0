package billing

import "errors"

var (
	// ErrInvalidPeriod is returned when a fee period ends before it starts.
	ErrInvalidPeriod = errors.New("billing: period end before start")
	// ErrUnknownEventType is returned when an event label cannot be mapped.
	ErrUnknownEventType = errors.New("billing: unknown event type")
	// ErrNilSchedule is returned when a fee schedule is required but missing.
	ErrNilSchedule = errors.New("billing: nil fee schedule")
)
