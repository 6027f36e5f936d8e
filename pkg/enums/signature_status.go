package enums

import "fmt"

// SignatureStatus tracks an individual signer's progress within an envelope.
type SignatureStatus string

const (
	SignatureStatusPending  SignatureStatus = "pending"
	SignatureStatusSigned   SignatureStatus = "signed"
	SignatureStatusDeclined SignatureStatus = "declined"
)

var validSignatureStatuses = []SignatureStatus{
	SignatureStatusPending,
	SignatureStatusSigned,
	SignatureStatusDeclined,
}

// String implements fmt.Stringer.
func (s SignatureStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SignatureStatus.
func (s SignatureStatus) IsValid() bool {
	for _, candidate := range validSignatureStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSignatureStatus converts raw input into a SignatureStatus.
func ParseSignatureStatus(value string) (SignatureStatus, error) {
	for _, candidate := range validSignatureStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid signature status %q", value)
}
