package mappers

import "staybridge/supplier"

// CommandConfirmBooking commits a previously-quoted cancellation, accepting
// the quoted penalty.
const CommandConfirmBooking = "confirmbooking"

// CancelCommitResult is the final cancellation outcome from the supplier.
type CancelCommitResult struct {
	Penalty  float64
	Currency string
	Status   string
}

// BuildConfirmCancellation produces the confirmbooking payload that accepts
// the quoted penalty and finalizes the cancellation.
func BuildConfirmCancellation(bookingCode, referenceNumber string, penalty float64) ([]*supplier.Node, error) {
	if bookingCode == "" {
		return nil, newValidationError("bookingCode", "is required")
	}
	if referenceNumber == "" {
		return nil, newValidationError("referenceNumber", "is required")
	}
	booking := supplier.NewNode("bookingDetails").
		Add("bookingCode", bookingCode).
		Add("referenceNumber", referenceNumber)
	return []*supplier.Node{
		booking,
		supplier.NewNode("bookingType").Add("type", "cancellation"),
		supplier.NewNode("penaltyApplied").Add("amount", formatAmount(penalty)),
	}, nil
}

// MapConfirmCancellation extracts the committed cancellation outcome.
func MapConfirmCancellation(root *supplier.Node) *CancelCommitResult {
	return &CancelCommitResult{
		Penalty:  root.FloatValue("penaltyApplied"),
		Currency: root.Value("currency"),
		Status:   root.Value("bookingStatus"),
	}
}
