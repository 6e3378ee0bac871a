package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "LEAD_CAPTURED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used when reconstructing events
// from the wire.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const LeadCapturedType = "LEAD_CAPTURED"

// NewLeadCaptured is emitted after passive lead extraction found contact
// info in a conversation.
func NewLeadCaptured(conversationId, email, phone string) Event {
	return BaseEvent{
		Type: LeadCapturedType,
		Data: map[string]interface{}{
			"conversation_id": conversationId,
			"email":           email,
			"phone":           phone,
		},
		OccurredAt: time.Now(),
	}
}
