package models

import "time"

// Step is one ledger entry: a single externally-effectful attempt of a saga
// transition. Entries are append-only and never mutated after creation.
// (flow_id, step, idempotency_key) is the idempotent dedup key: a repeated
// call with the same key short-circuits to the stored outcome instead of
// re-calling the supplier.
type Step struct {
	ID             string `bson:"id" json:"id"`
	FlowID         string `bson:"flow_id" json:"flowId"`
	Step           string `bson:"step" json:"step"`
	IdempotencyKey string `bson:"idempotency_key" json:"idempotencyKey"`

	Command       string `bson:"command,omitempty" json:"command,omitempty"`
	TransactionID string `bson:"transaction_id,omitempty" json:"transactionId,omitempty"`

	Success   bool   `bson:"success" json:"success"`
	ErrorKind string `bson:"error_kind,omitempty" json:"errorKind,omitempty"`
	ErrorCode int    `bson:"error_code,omitempty" json:"errorCode,omitempty"`
	ErrorText string `bson:"error_text,omitempty" json:"errorText,omitempty"`

	AllocationIn  string `bson:"allocation_in,omitempty" json:"-"`
	AllocationOut string `bson:"allocation_out,omitempty" json:"-"`

	// Identifiers produced by this step, if any.
	ItineraryBookingCode    string `bson:"itinerary_booking_code,omitempty" json:"itineraryBookingCode,omitempty"`
	ServiceReferenceNumber  string `bson:"service_reference_number,omitempty" json:"serviceReferenceNumber,omitempty"`
	SupplierOrderCode       string `bson:"supplier_order_code,omitempty" json:"supplierOrderCode,omitempty"`
	SupplierAuthorisationID string `bson:"supplier_authorisation_id,omitempty" json:"supplierAuthorisationId,omitempty"`
	FinalBookingCode        string `bson:"final_booking_code,omitempty" json:"finalBookingCode,omitempty"`
	BookingReferenceNumber  string `bson:"booking_reference_number,omitempty" json:"bookingReferenceNumber,omitempty"`

	Total    float64 `bson:"total,omitempty" json:"total,omitempty"`
	Currency string  `bson:"currency,omitempty" json:"currency,omitempty"`

	// Raw wire bodies with credentials and tokens redacted. Retained for
	// operators; never surfaced to end users.
	RequestBody  string `bson:"request_body,omitempty" json:"-"`
	ResponseBody string `bson:"response_body,omitempty" json:"-"`

	// FlowStatus is the flow status after this step completed. Replays
	// return it so a retried HTTP request sees the same outcome.
	FlowStatus string `bson:"flow_status,omitempty" json:"flowStatus,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Saga step names as recorded in the ledger.
const (
	StepStart       = "start"
	StepSelect      = "select"
	StepBlock       = "block"
	StepSave        = "save"
	StepPrice       = "price"
	StepPreauth     = "preauth"
	StepConfirm     = "confirm"
	StepCancelQuote = "cancel_quote"
	StepCancel      = "cancel"
)
