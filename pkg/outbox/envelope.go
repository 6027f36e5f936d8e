package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActorRef identifies who triggered the event, typically the envelope
// creator or the signer whose action caused the transition.
type ActorRef struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email,omitempty"`
}

// PayloadEnvelope is the versioned structure stored in outbox_events and
// published verbatim to Pub/Sub. Consumers key off version before decoding
// the data field.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
