package models

import "time"

const isoDateLayout = "2006-01-02"

func parseISODate(s string) (time.Time, bool) {
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Actor is the authenticated caller identity attached by the auth middleware.
type Actor struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// Elevated reports whether the actor may act on flows it does not own.
func (a Actor) Elevated() bool {
	return a.Role == "admin" || a.Role == "operator"
}

// NotificationEvent is the payload of an asynchronously-delivered booking
// event push.
type NotificationEvent struct {
	UserID      string    `json:"userId"`
	FlowID      string    `json:"flowId"`
	Event       string    `json:"event"` // "booking_confirmed" | "booking_cancelled"
	BookingCode string    `json:"bookingCode,omitempty"`
	HotelID     int       `json:"hotelId,omitempty"`
	At          time.Time `json:"at"`
}
