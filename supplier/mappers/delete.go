package mappers

import "staybridge/supplier"

// CommandDeleteItinerary removes an unconfirmed itinerary placeholder. Used
// when a flow is cancelled before it ever reached confirmation; nothing was
// charged, so there is no penalty arithmetic.
const CommandDeleteItinerary = "deleteitinerary"

// BuildDeleteItinerary produces the deleteitinerary payload.
func BuildDeleteItinerary(bookingCode string) ([]*supplier.Node, error) {
	if bookingCode == "" {
		return nil, newValidationError("bookingCode", "is required")
	}
	return []*supplier.Node{
		supplier.NewNode("bookingDetails").Add("bookingCode", bookingCode),
	}, nil
}
