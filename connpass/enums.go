package connpass

import (
	"fmt"
	"strconv"
)

// EventType is how attendance is handled for an event.
type EventType string

const (
	// EventTypeParticipation events take registrations on connpass.
	EventTypeParticipation EventType = "participation"
	// EventTypeAdvertisement events are listed only; registration happens elsewhere.
	EventTypeAdvertisement EventType = "advertisement"
)

func parseEventType(s string) (EventType, error) {
	switch t := EventType(s); t {
	case EventTypeParticipation, EventTypeAdvertisement:
		return t, nil
	default:
		return "", fmt.Errorf("unknown event type %q", s)
	}
}

// OpenStatus is the lifecycle state of an event.
type OpenStatus string

const (
	OpenStatusPreopen   OpenStatus = "preopen"
	OpenStatusOpen      OpenStatus = "open"
	OpenStatusClose     OpenStatus = "close"
	OpenStatusCancelled OpenStatus = "cancelled"
)

func parseOpenStatus(s string) (OpenStatus, error) {
	switch st := OpenStatus(s); st {
	case OpenStatusPreopen, OpenStatusOpen, OpenStatusClose, OpenStatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown open status %q", s)
	}
}

// EventOrder is the sort order of an event search.
type EventOrder int

const (
	OrderUpdatedAt EventOrder = 1
	OrderStartedAt EventOrder = 2
	OrderCreatedAt EventOrder = 3
)

// WireValue returns the query parameter value for o.
func (o EventOrder) WireValue() string { return strconv.Itoa(int(o)) }

func (o EventOrder) String() string {
	switch o {
	case OrderUpdatedAt:
		return "updated_at"
	case OrderStartedAt:
		return "started_at"
	case OrderCreatedAt:
		return "created_at"
	default:
		return "EventOrder(" + strconv.Itoa(int(o)) + ")"
	}
}

// ParseEventOrder accepts either the numeric wire value or the name
// returned by String.
func ParseEventOrder(s string) (EventOrder, error) {
	for _, o := range []EventOrder{OrderUpdatedAt, OrderStartedAt, OrderCreatedAt} {
		if s == o.WireValue() || s == o.String() {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown event order %q", s)
}
