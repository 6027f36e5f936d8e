package enums

import "fmt"

// AuditAction is the canonical action code recorded in audit_logs.
type AuditAction string

const (
	AuditActionUploadDoc           AuditAction = "UPLOAD_DOC"
	AuditActionDeleteDoc           AuditAction = "DELETE_DOC"
	AuditActionCreateEnvelope      AuditAction = "CREATE_ENVELOPE"
	AuditActionSendEnvelope        AuditAction = "SEND_ENVELOPE"
	AuditActionRejectEnvelope      AuditAction = "REJECT_ENVELOPE"
	AuditActionSignDoc             AuditAction = "SIGN_DOC"
	AuditActionDeclineSign         AuditAction = "DECLINE_SIGN"
	AuditActionCreateUserSignature AuditAction = "CREATE_USER_SIGNATURE"
	AuditActionUpdateUserSignature AuditAction = "UPDATE_USER_SIGNATURE"
	AuditActionDeleteUserSignature AuditAction = "DELETE_USER_SIGNATURE"
)

var validAuditActions = []AuditAction{
	AuditActionUploadDoc,
	AuditActionDeleteDoc,
	AuditActionCreateEnvelope,
	AuditActionSendEnvelope,
	AuditActionRejectEnvelope,
	AuditActionSignDoc,
	AuditActionDeclineSign,
	AuditActionCreateUserSignature,
	AuditActionUpdateUserSignature,
	AuditActionDeleteUserSignature,
}

// String implements fmt.Stringer.
func (a AuditAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AuditAction.
func (a AuditAction) IsValid() bool {
	for _, candidate := range validAuditActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAuditAction converts raw input into an AuditAction.
func ParseAuditAction(value string) (AuditAction, error) {
	for _, candidate := range validAuditActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid audit action %q", value)
}

// AuditTargetType tags the polymorphic target reference on an audit entry.
type AuditTargetType string

const (
	AuditTargetDocument      AuditTargetType = "document"
	AuditTargetEnvelope      AuditTargetType = "envelope"
	AuditTargetSignature     AuditTargetType = "signature"
	AuditTargetUserSignature AuditTargetType = "user_signature"
	AuditTargetUser          AuditTargetType = "user"
)

var validAuditTargetTypes = []AuditTargetType{
	AuditTargetDocument,
	AuditTargetEnvelope,
	AuditTargetSignature,
	AuditTargetUserSignature,
	AuditTargetUser,
}

// IsValid reports whether the value is a known AuditTargetType.
func (a AuditTargetType) IsValid() bool {
	for _, candidate := range validAuditTargetTypes {
		if candidate == a {
			return true
		}
	}
	return false
}
