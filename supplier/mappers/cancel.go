package mappers

import "staybridge/supplier"

// CommandCancelBooking quotes the cancellation penalty for a confirmed
// booking without committing anything.
const CommandCancelBooking = "cancelbooking"

// CancelQuoteResult is the penalty estimate for cancelling now.
type CancelQuoteResult struct {
	Penalty  float64
	Currency string
}

// BuildCancelBooking produces the cancelbooking payload.
func BuildCancelBooking(bookingCode, referenceNumber string) ([]*supplier.Node, error) {
	if bookingCode == "" {
		return nil, newValidationError("bookingCode", "is required")
	}
	if referenceNumber == "" {
		return nil, newValidationError("referenceNumber", "is required")
	}
	booking := supplier.NewNode("bookingDetails").
		Add("bookingCode", bookingCode).
		Add("referenceNumber", referenceNumber)
	return []*supplier.Node{booking, supplier.NewNode("testPricesAndAllocation").Add("enabled", "yes")}, nil
}

// MapCancelBooking extracts the penalty quote.
func MapCancelBooking(root *supplier.Node) *CancelQuoteResult {
	res := &CancelQuoteResult{
		Penalty:  root.FloatValue("penaltyApplied"),
		Currency: root.Value("currency"),
	}
	if services := root.First("services"); services != nil {
		if svc := services.First("service"); svc != nil {
			if v := svc.FloatValue("penaltyApplied"); v > 0 {
				res.Penalty = v
			}
			if c := svc.Value("currency"); c != "" {
				res.Currency = c
			}
		}
	}
	return res
}
