package enums

import "fmt"

// DocumentStatus mirrors the envelope workflow on the document row.
// It is informational only; workflow gating reads envelope status.
type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusSent      DocumentStatus = "sent"
	DocumentStatusCompleted DocumentStatus = "completed"
	DocumentStatusRejected  DocumentStatus = "rejected"
)

var validDocumentStatuses = []DocumentStatus{
	DocumentStatusDraft,
	DocumentStatusSent,
	DocumentStatusCompleted,
	DocumentStatusRejected,
}

// String implements fmt.Stringer.
func (d DocumentStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DocumentStatus.
func (d DocumentStatus) IsValid() bool {
	for _, candidate := range validDocumentStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDocumentStatus converts raw input into a DocumentStatus.
func ParseDocumentStatus(value string) (DocumentStatus, error) {
	for _, candidate := range validDocumentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document status %q", value)
}
