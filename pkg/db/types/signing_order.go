package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// SignerEntry is one element of an envelope's signing order. The JSON shape
// {"signer_id": "<uuid>", "order": <positive int>} is the durable contract
// shared with the API surface and must not change.
type SignerEntry struct {
	SignerID uuid.UUID `json:"signer_id"`
	Order    int       `json:"order"`
}

// SigningOrder is the ordered signer list stored as a JSONB column.
// It is read-only once the envelope leaves draft.
type SigningOrder []SignerEntry

// Value marshals the signing order into its JSON column representation.
func (s SigningOrder) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("signing order: marshal: %w", err)
	}
	return string(raw), nil
}

// Scan decodes the JSON column representation.
func (s *SigningOrder) Scan(value interface{}) error {
	if value == nil {
		*s = SigningOrder{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("signing order: unsupported scan type %T", value)
	}

	if len(raw) == 0 {
		*s = SigningOrder{}
		return nil
	}

	var entries []SignerEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return fmt.Errorf("signing order: unmarshal: %w", err)
	}
	*s = entries
	return nil
}

// PositionOf returns the order value for the given signer, or 0 when the
// signer does not appear in the signing order. Zero is a sentinel: callers
// must treat it as "not found", never as a real position.
func (s SigningOrder) PositionOf(signerID uuid.UUID) int {
	for _, entry := range s {
		if entry.SignerID == signerID {
			return entry.Order
		}
	}
	return 0
}

// Contains reports whether the signer appears in the signing order.
func (s SigningOrder) Contains(signerID uuid.UUID) bool {
	return s.PositionOf(signerID) > 0
}

// SignerIDs returns the signer ids in list order.
func (s SigningOrder) SignerIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s))
	for _, entry := range s {
		ids = append(ids, entry.SignerID)
	}
	return ids
}
