package notifications

import "fmt"

// Message templates for workflow transitions. The copy is part of the user
// contract; keep changes deliberate.

// SignRequestMessage announces the first signer's turn after a send.
func SignRequestMessage(creatorName, documentName string) string {
	return fmt.Sprintf("%s requested you to sign document %q", creatorName, documentName)
}

// TurnMessage announces the next signer's turn mid-flow.
func TurnMessage(documentName string) string {
	return fmt.Sprintf("It is now your turn to sign document %q", documentName)
}

// CancelledMessage announces a creator-initiated rejection to signers.
func CancelledMessage(creatorName, documentName string) string {
	return fmt.Sprintf("Signing of document %q was cancelled by %s", documentName, creatorName)
}

// CompletedMessage announces full completion to the creator.
func CompletedMessage(documentName string) string {
	return fmt.Sprintf("Document %q has been signed by all signers", documentName)
}

// DeclinedMessage announces a signer's decline to the creator.
func DeclinedMessage(signerName, documentName string) string {
	return fmt.Sprintf("%s declined to sign document %q", signerName, documentName)
}
