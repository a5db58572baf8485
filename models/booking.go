package models

import "time"

// Contact is the lead contact for a booking.
type Contact struct {
	Email     string `bson:"email" json:"email"`
	Phone     string `bson:"phone,omitempty" json:"phone,omitempty"`
	FirstName string `bson:"first_name" json:"firstName"`
	LastName  string `bson:"last_name" json:"lastName"`
}

// Passenger is one guest on the booking. Salutation is a supplier code
// resolved through the salutation reference table.
type Passenger struct {
	Salutation string `bson:"salutation,omitempty" json:"salutation,omitempty"`
	FirstName  string `bson:"first_name" json:"firstName"`
	LastName   string `bson:"last_name" json:"lastName"`
	Child      bool   `bson:"child,omitempty" json:"child,omitempty"`
	Age        int    `bson:"age,omitempty" json:"age,omitempty"`
	Leading    bool   `bson:"leading,omitempty" json:"leading,omitempty"`
}

// RoomPassengers is an explicit per-room passenger list. When absent, the
// flow service slices the flat passenger list across rooms by occupancy.
type RoomPassengers struct {
	Passengers []Passenger `bson:"passengers" json:"passengers"`
}

// SaveBookingInput is the caller payload for the save transition.
type SaveBookingInput struct {
	Contact    Contact          `json:"contact"`
	Passengers []Passenger      `json:"passengers,omitempty"`
	Rooms      []RoomPassengers `json:"rooms,omitempty"` // explicit per-room lists, honored when present
	Remarks    string           `json:"remarks,omitempty"`
}

// BookingDetails is the normalized projection of a supplier reservation as
// returned by the booking-details command.
type BookingDetails struct {
	BookingCode     string    `json:"bookingCode"`
	ReferenceNumber string    `json:"referenceNumber,omitempty"`
	Status          string    `json:"status"`
	HotelID         int       `json:"hotelId,omitempty"`
	HotelName       string    `json:"hotelName,omitempty"`
	FromDate        string    `json:"fromDate,omitempty"`
	ToDate          string    `json:"toDate,omitempty"`
	Total           float64   `json:"total,omitempty"`
	Currency        string    `json:"currency,omitempty"`
	RetrievedAt     time.Time `json:"retrievedAt"`
}
