package mappers

import (
	"time"

	"staybridge/models"
	"staybridge/supplier"
)

// CommandBookingDetails reads a reservation back from the supplier, used for
// reconciliation after confirmation.
const CommandBookingDetails = "getbookingdetails"

// BuildBookingDetails produces the getbookingdetails payload.
func BuildBookingDetails(bookingCode string) ([]*supplier.Node, error) {
	if bookingCode == "" {
		return nil, newValidationError("bookingCode", "is required")
	}
	return []*supplier.Node{
		supplier.NewNode("bookingDetails").Add("bookingCode", bookingCode),
	}, nil
}

// MapBookingDetails normalizes a getbookingdetails response.
func MapBookingDetails(root *supplier.Node) *models.BookingDetails {
	details := &models.BookingDetails{
		BookingCode:     root.Value("bookingCode"),
		ReferenceNumber: root.Value("referenceNumber"),
		Status:          root.Value("bookingStatus"),
		RetrievedAt:     time.Now(),
	}
	if hotel := root.First("hotel"); hotel != nil {
		details.HotelID = hotel.IntValue("hotelid")
		details.HotelName = hotel.Value("hotelName")
		details.FromDate = hotel.Value("fromDate")
		details.ToDate = hotel.Value("toDate")
	}
	if pricing := root.First("pricing"); pricing != nil {
		details.Total = pricing.FloatValue("total")
		details.Currency = pricing.Value("currency")
	}
	return details
}
