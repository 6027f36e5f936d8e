package enums

import "fmt"

// EnvelopeStatus tracks an envelope through the signing workflow.
type EnvelopeStatus string

const (
	EnvelopeStatusDraft     EnvelopeStatus = "draft"
	EnvelopeStatusSent      EnvelopeStatus = "sent"
	EnvelopeStatusCompleted EnvelopeStatus = "completed"
	EnvelopeStatusRejected  EnvelopeStatus = "rejected"
)

var validEnvelopeStatuses = []EnvelopeStatus{
	EnvelopeStatusDraft,
	EnvelopeStatusSent,
	EnvelopeStatusCompleted,
	EnvelopeStatusRejected,
}

// String implements fmt.Stringer.
func (e EnvelopeStatus) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EnvelopeStatus.
func (e EnvelopeStatus) IsValid() bool {
	for _, candidate := range validEnvelopeStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further signer actions are permitted.
func (e EnvelopeStatus) IsTerminal() bool {
	return e == EnvelopeStatusCompleted || e == EnvelopeStatusRejected
}

// ParseEnvelopeStatus converts raw input into an EnvelopeStatus.
func ParseEnvelopeStatus(value string) (EnvelopeStatus, error) {
	for _, candidate := range validEnvelopeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid envelope status %q", value)
}
