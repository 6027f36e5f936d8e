package enums

import "fmt"

// OutboxEventType is the canonical event_type for workflow domain events.
type OutboxEventType string

const (
	EventEnvelopeSent       OutboxEventType = "envelope_sent"
	EventEnvelopeCompleted  OutboxEventType = "envelope_completed"
	EventEnvelopeRejected   OutboxEventType = "envelope_rejected"
	EventSignatureSigned    OutboxEventType = "signature_signed"
	EventSignatureDeclined  OutboxEventType = "signature_declined"
	EventNotificationQueued OutboxEventType = "notification_queued"
)

var validOutboxEventTypes = []OutboxEventType{
	EventEnvelopeSent,
	EventEnvelopeCompleted,
	EventEnvelopeRejected,
	EventSignatureSigned,
	EventSignatureDeclined,
	EventNotificationQueued,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (o OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts the raw string to OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateEnvelope     OutboxAggregateType = "envelope"
	AggregateSignature    OutboxAggregateType = "signature"
	AggregateNotification OutboxAggregateType = "notification"
)

var validOutboxAggregateTypes = []OutboxAggregateType{
	AggregateEnvelope,
	AggregateSignature,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (o OutboxAggregateType) IsValid() bool {
	for _, candidate := range validOutboxAggregateTypes {
		if candidate == o {
			return true
		}
	}
	return false
}
