package models

import "time"

// Flow statuses. A flow's status only ever moves forward along the state
// graph; CONFIRMED, CANCELLED and FAILED are terminal.
const (
	FlowStarted       = "STARTED"
	FlowOfferSelected = "OFFER_SELECTED"
	FlowBlocked       = "BLOCKED"
	FlowSaved         = "SAVED"
	FlowPriced        = "PRICED"
	FlowPreauthed     = "PREAUTHED"
	FlowConfirmed     = "CONFIRMED"
	FlowCancelQuoted  = "CANCEL_QUOTED"
	FlowCancelled     = "CANCELLED"
	FlowFailed        = "FAILED"
)

// FXQuote is a best-effort currency conversion captured at pricing time.
type FXQuote struct {
	Amount   float64   `bson:"amount" json:"amount"`
	Currency string    `bson:"currency" json:"currency"`
	Rate     float64   `bson:"rate" json:"rate"`
	RateDate time.Time `bson:"rate_date" json:"rateDate"`
	Source   string    `bson:"source,omitempty" json:"source,omitempty"`
}

// PriceSnapshot captures the authoritative price at one phase of the saga.
// Snapshots are append-only evidence: a later phase never overwrites an
// earlier phase's snapshot.
type PriceSnapshot struct {
	Total      float64   `bson:"total" json:"total"`
	Currency   string    `bson:"currency" json:"currency"`
	Allocation string    `bson:"allocation,omitempty" json:"-"`
	FX         *FXQuote  `bson:"fx,omitempty" json:"fx,omitempty"`
	At         time.Time `bson:"at" json:"at"`
}

// CancelQuote is the penalty estimate returned by a cancellation quote.
type CancelQuote struct {
	Penalty  float64   `bson:"penalty" json:"penalty"`
	Currency string    `bson:"currency" json:"currency"`
	At       time.Time `bson:"at" json:"at"`
}

// CancelResult is the final cancellation outcome.
type CancelResult struct {
	Penalty        float64   `bson:"penalty" json:"penalty"`
	PaymentBalance float64   `bson:"payment_balance" json:"paymentBalance"`
	Currency       string    `bson:"currency" json:"currency"`
	Reason         string    `bson:"reason,omitempty" json:"reason,omitempty"`
	RefundID       string    `bson:"refund_id,omitempty" json:"refundId,omitempty"`
	At             time.Time `bson:"at" json:"at"`
}

// Flow is one booking saga instance. Created by start, mutated exclusively by
// the flow service in response to caller-driven transitions, never deleted.
type Flow struct {
	ID     string `bson:"id" json:"id"`
	UserID string `bson:"user_id" json:"userId"`
	Status string `bson:"status" json:"status"`

	SearchContext SearchContext `bson:"search_context" json:"searchContext"`
	SelectedOffer *OfferPayload `bson:"selected_offer,omitempty" json:"selectedOffer,omitempty"`

	// AllocationCurrent is the latest opaque allocation token issued by the
	// supplier. It must be forwarded unmodified on every subsequent call
	// until the supplier supersedes it.
	AllocationCurrent string `bson:"allocation_current,omitempty" json:"-"`

	// Identifiers returned by the save step, required by all later steps.
	ItineraryBookingCode   string `bson:"itinerary_booking_code,omitempty" json:"itineraryBookingCode,omitempty"`
	ServiceReferenceNumber string `bson:"service_reference_number,omitempty" json:"serviceReferenceNumber,omitempty"`

	// Payment-authorization identifiers from the pre-auth step.
	SupplierOrderCode       string `bson:"supplier_order_code,omitempty" json:"supplierOrderCode,omitempty"`
	SupplierAuthorisationID string `bson:"supplier_authorisation_id,omitempty" json:"supplierAuthorisationId,omitempty"`
	PaymentIntentID         string `bson:"payment_intent_id,omitempty" json:"-"`

	// Identifiers of the confirmed reservation.
	FinalBookingCode       string `bson:"final_booking_code,omitempty" json:"finalBookingCode,omitempty"`
	BookingReferenceNumber string `bson:"booking_reference_number,omitempty" json:"bookingReferenceNumber,omitempty"`

	// Independent pricing snapshots, one per phase.
	Priced        *PriceSnapshot `bson:"priced,omitempty" json:"priced,omitempty"`
	Preauthorized *PriceSnapshot `bson:"preauthorized,omitempty" json:"preauthorized,omitempty"`
	Confirmed     *PriceSnapshot `bson:"confirmed,omitempty" json:"confirmed,omitempty"`

	// Cancellation snapshots, independent of the booking snapshots.
	CancelQuote  *CancelQuote  `bson:"cancel_quote,omitempty" json:"cancelQuote,omitempty"`
	CancelResult *CancelResult `bson:"cancel_result,omitempty" json:"cancelResult,omitempty"`

	FailureKey string `bson:"failure_key,omitempty" json:"failureKey,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Terminal reports whether the flow reached a terminal status.
func (f *Flow) Terminal() bool {
	switch f.Status {
	case FlowConfirmed, FlowCancelled, FlowFailed:
		return true
	}
	return false
}

// PaidAmount returns the amount actually held or charged for this flow, used
// by the cancellation balance arithmetic. The confirmed snapshot wins over
// the preauthorized one.
func (f *Flow) PaidAmount() float64 {
	if f.Confirmed != nil {
		return f.Confirmed.Total
	}
	if f.Preauthorized != nil {
		return f.Preauthorized.Total
	}
	return 0
}
