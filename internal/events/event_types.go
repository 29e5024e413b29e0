package events

import (
	"time"

	"github.com/spec-kit/debtor-registry/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRequestSubmitted     EventType = "request_submitted"
	EventRequestStatusChanged EventType = "request_status_changed"
	EventRequestPromoted      EventType = "request_promoted"
	EventRequestRemoved       EventType = "request_removed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type   domain.SubjectType `json:"type"`
	UserID string             `json:"user_id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// RequestSubmittedPayload payload.
type RequestSubmittedPayload struct {
	IndexKey    int64  `json:"index_key"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	AmountCents int64  `json:"amount_cents"`
}

// RequestStatusChangedPayload payload.
type RequestStatusChangedPayload struct {
	OldStatus domain.RequestStatus `json:"old_status"`
	NewStatus domain.RequestStatus `json:"new_status"`
	Reason    string               `json:"reason,omitempty"`
}

// RequestPromotedPayload payload.
type RequestPromotedPayload struct {
	DebtorID string `json:"debtor_id"`
	IndexKey int64  `json:"index_key"`
}

// RequestRemovedPayload payload.
type RequestRemovedPayload struct {
	IndexKey         int64 `json:"index_key"`
	CanonicalRemoved bool  `json:"canonical_removed"`
}
