package entity

type NotifyEventType string

const (
	NotifyEventTypeMessage   NotifyEventType = "message.created"
	NotifyEventTypeFinalized NotifyEventType = "negotiation.finalized"
)

// NotifyEvent is the envelope pushed to the configured webhook so connected
// clients can refresh without polling.
type NotifyEvent struct {
	Event         NotifyEventType `json:"event"`
	NegotiationID string          `json:"negotiation_id"`
	Timestamp     string          `json:"timestamp,omitempty"`
	Data          any             `json:"data,omitempty"`
}
