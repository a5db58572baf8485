package supplier

// Semantic error kinds. A kind drives two independent downstream decisions:
// the message surfaced to the end user and whether the flow service's retry
// loop may re-attempt.
const (
	KindInvalidRequest        = "invalid_request"
	KindNoAvailability        = "no_availability"
	KindInvalidHotel          = "invalid_hotel"
	KindInvalidCurrency       = "invalid_currency"
	KindInvalidDates          = "invalid_dates"
	KindRateLimited           = "rate_limited"
	KindSupplierUnavailable   = "supplier_unavailable"
	KindRateChanged           = "rate_changed"
	KindPermissionDenied      = "permission_denied"
	KindSessionExpired        = "session_expired"
	KindSupplierPaymentError  = "supplier_payment_error"
	KindInsufficientLimit     = "insufficient_limit"
	KindCancellationNotAllowed = "cancellation_not_allowed"
	KindAmendNotAllowed       = "amend_not_allowed"
	KindBookingFailed         = "booking_failed"
	KindUnknown               = "unknown"
)

// Classification is the taxonomy verdict for one supplier code.
type Classification struct {
	Kind        string
	UserMessage string
	Retryable   bool
}

// CodeNoAvailability is the supplier's "no availability" code, also used for
// locally-constructed no-match failures during the block step.
const CodeNoAvailability = 12

// codeTable maps supplier numeric codes to classifications. Pure lookup,
// no I/O.
var codeTable = map[int]Classification{
	1:   {KindPermissionDenied, "Supplier rejected our credentials.", false},
	2:   {KindPermissionDenied, "Supplier account is not authorised for this operation.", false},
	3:   {KindSessionExpired, "The supplier session expired. Please start again.", false},
	4:   {KindInvalidRequest, "The request was malformed.", false},
	5:   {KindInvalidRequest, "A required field is missing.", false},
	6:   {KindInvalidHotel, "The requested hotel is unknown.", false},
	7:   {KindInvalidHotel, "The requested hotel is not bookable through this channel.", false},
	8:   {KindInvalidDates, "The requested dates are invalid.", false},
	9:   {KindInvalidDates, "Bookings this far ahead are not accepted.", false},
	10:  {KindInvalidCurrency, "The requested currency is not supported.", false},
	11:  {KindInvalidRequest, "The requested occupancy is invalid.", false},
	12:  {KindNoAvailability, "No rooms are available for the requested stay.", false},
	13:  {KindNoAvailability, "The selected room is no longer available.", false},
	14:  {KindRateChanged, "The rate changed since it was quoted.", false},
	15:  {KindRateChanged, "The quoted allocation is no longer valid.", false},
	16:  {KindInvalidRequest, "The selected rate basis is unknown.", false},
	17:  {KindNoAvailability, "The hotel has stopped selling these dates.", false},
	18:  {KindBookingFailed, "The itinerary could not be created.", false},
	19:  {KindBookingFailed, "The itinerary was not found.", false},
	20:  {KindBookingFailed, "The itinerary is in the wrong state for this operation.", false},
	21:  {KindAmendNotAllowed, "This booking can no longer be amended.", false},
	22:  {KindCancellationNotAllowed, "This booking can no longer be cancelled.", false},
	23:  {KindCancellationNotAllowed, "The cancellation window has closed.", false},
	24:  {KindSupplierPaymentError, "The supplier rejected the payment.", false},
	25:  {KindSupplierPaymentError, "The payment authorisation was declined.", false},
	26:  {KindInsufficientLimit, "The agency credit limit is exhausted.", false},
	27:  {KindInsufficientLimit, "The deposit balance is too low for this booking.", false},
	28:  {KindBookingFailed, "The booking could not be confirmed.", true},
	29:  {KindBookingFailed, "A duplicate booking was detected.", false},
	30:  {KindInvalidRequest, "Passenger details are incomplete.", false},
	31:  {KindInvalidRequest, "Passenger names contain unsupported characters.", false},
	41:  {KindSupplierUnavailable, "The supplier is temporarily unavailable.", true},
	42:  {KindSupplierUnavailable, "The supplier timed out processing the request.", true},
	43:  {KindSupplierUnavailable, "The supplier is under maintenance.", true},
	44:  {KindRateLimited, "Too many requests to the supplier. Please retry shortly.", true},
	45:  {KindRateLimited, "The supplier throttled this account.", true},
	50:  {KindSupplierUnavailable, "An internal supplier error occurred.", true},
	51:  {KindSupplierUnavailable, "The supplier database is unavailable.", true},
	52:  {KindBookingFailed, "The supplier could not lock the allocation.", true},
	99:  {KindUnknown, "An unexpected supplier error occurred.", true},
	101: {KindInvalidRequest, "The search produced too many combinations; narrow the request.", false},
}

// Classify maps a supplier numeric code to its classification. Unknown codes
// are treated as transient: unseen codes are more often temporary upstream
// conditions than permanent ones.
func Classify(code int) Classification {
	if c, ok := codeTable[code]; ok {
		return c
	}
	return Classification{
		Kind:        KindUnknown,
		UserMessage: "An unexpected supplier error occurred. Please try again.",
		Retryable:   true,
	}
}
