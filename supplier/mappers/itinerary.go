package mappers

import (
	"fmt"
	"strconv"

	"staybridge/supplier"
)

// CommandBookItinerary prices, pre-authorizes or confirms a saved itinerary.
// The wire command is identical across the three phases; only the confirm
// discriminant and the payment block differ.
const CommandBookItinerary = "bookitinerary"

// ConfirmMode is the explicit discriminant for the three bookitinerary
// phases.
type ConfirmMode int

const (
	ConfirmCheck   ConfirmMode = iota // zero-amount price check
	ConfirmPreauth                    // payment pre-authorization
	ConfirmYes                        // final confirmation
)

func (m ConfirmMode) wire() string {
	switch m {
	case ConfirmPreauth:
		return "preauth"
	case ConfirmYes:
		return "yes"
	default:
		return "no"
	}
}

func (m ConfirmMode) String() string {
	switch m {
	case ConfirmPreauth:
		return "preauth"
	case ConfirmYes:
		return "confirm"
	default:
		return "check"
	}
}

// ItineraryParams are the inputs shared by the three bookitinerary phases.
type ItineraryParams struct {
	BookingCode            string
	ServiceReferenceNumber string
	Allocation             string
	Mode                   ConfirmMode

	// Expected total, echoed so the supplier can detect drift. Zero for the
	// initial price check.
	Total    float64
	Currency string

	// Authorization identifiers, required only for ConfirmYes.
	OrderCode       string
	AuthorisationID string
}

// BuildBookItinerary produces the bookitinerary payload for one phase.
func BuildBookItinerary(p ItineraryParams) ([]*supplier.Node, error) {
	if p.BookingCode == "" {
		return nil, newValidationError("bookingCode", "is required")
	}
	if p.ServiceReferenceNumber == "" {
		return nil, newValidationError("referenceNumber", "is required")
	}
	if p.Allocation == "" {
		return nil, newValidationError("allocation", "allocation token is required")
	}
	if p.Mode == ConfirmYes && (p.OrderCode == "" || p.AuthorisationID == "") {
		return nil, newValidationError("authorization", "order code and authorisation id are required to confirm")
	}

	booking := supplier.NewNode("bookingDetails").
		Add("bookingCode", p.BookingCode).
		Add("referenceNumber", p.ServiceReferenceNumber)
	booking.AddChild(supplier.NewNode("allocationDetails").Add("token", p.Allocation))

	confirm := supplier.NewNode("confirm").Add("mode", p.Mode.wire())

	payload := []*supplier.Node{booking, confirm}

	if p.Mode != ConfirmCheck {
		payment := supplier.NewNode("paymentDetails").
			Add("total", formatAmount(p.Total)).
			Add("currency", p.Currency)
		if p.Mode == ConfirmYes {
			payment.Add("orderCode", p.OrderCode).
				Add("authorisationId", p.AuthorisationID)
		}
		payload = append(payload, payment)
	}
	return payload, nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// ItineraryResult is the normalized bookitinerary outcome. Which fields are
// populated depends on the phase.
type ItineraryResult struct {
	Total      float64
	Currency   string
	Allocation string

	// Populated by the preauth phase.
	OrderCode       string
	AuthorisationID string

	// Populated by the final confirmation.
	BookingCode     string
	ReferenceNumber string
}

// MapBookItinerary normalizes a bookitinerary response for any phase.
func MapBookItinerary(root *supplier.Node) (*ItineraryResult, error) {
	pricing := root.First("pricing")
	if pricing == nil {
		pricing = root
	}
	res := &ItineraryResult{
		Total:      pricing.FloatValue("total"),
		Currency:   pricing.Value("currency"),
		Allocation: root.Value("allocationDetails"),
	}
	if res.Total <= 0 {
		return nil, fmt.Errorf("bookitinerary response carried no price")
	}
	if auth := root.First("authorization"); auth != nil {
		res.OrderCode = auth.Value("orderCode")
		res.AuthorisationID = auth.Value("authorisationId")
	}
	if conf := root.First("confirmation"); conf != nil {
		res.BookingCode = conf.Value("bookingCode")
		res.ReferenceNumber = conf.Value("referenceNumber")
	}
	return res, nil
}
