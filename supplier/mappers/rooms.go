package mappers

import (
	"strconv"

	"staybridge/models"
	"staybridge/supplier"
)

// CommandRoomRates re-validates a selected rate and reissues its allocation.
const CommandRoomRates = "getroomrates"

// BuildRoomRates produces the getroomrates payload for a stored selection.
// The current allocation token is echoed unmodified; the supplier answers
// with a fresh one.
func BuildRoomRates(sc models.SearchContext, sel models.OfferPayload, allocation string) ([]*supplier.Node, error) {
	if err := validateStay(sc); err != nil {
		return nil, err
	}
	if sel.RoomTypeCode == "" || sel.RateBasis == "" {
		return nil, newValidationError("selection", "room type and rate basis are required")
	}
	if allocation == "" {
		return nil, newValidationError("allocation", "allocation token is required")
	}
	payload := []*supplier.Node{
		buildBookingDetails(sc),
		supplier.NewNode("hotelCode").Add("code", strconv.Itoa(sc.HotelID)),
		supplier.NewNode("selection").
			Add("roomTypeCode", sel.RoomTypeCode).
			Add("rateBasis", sel.RateBasis),
		supplier.NewNode("allocationDetails").Add("token", allocation),
	}
	return payload, nil
}

// MapRoomRates normalizes a getroomrates response into the candidate list
// for the queried hotel.
func MapRoomRates(root *supplier.Node) []RateCandidate {
	hotels := root.First("hotels")
	if hotels == nil {
		return mapRooms(root.First("rooms"))
	}
	hotelNodes := hotels.All("hotel")
	if len(hotelNodes) == 0 {
		return nil
	}
	return mapRooms(hotelNodes[0].First("rooms"))
}
