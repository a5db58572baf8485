package mappers

import (
	"strconv"
	"strings"

	"staybridge/models"
	"staybridge/supplier"
	"staybridge/utils"
)

// CommandSaveBooking creates the supplier-side itinerary placeholder.
const CommandSaveBooking = "savebooking"

// SaveResult carries the identifiers the save step produces; every later
// step requires them.
type SaveResult struct {
	ItineraryBookingCode   string
	ServiceReferenceNumber string
}

// BuildSaveBooking produces the savebooking payload. Passengers must already
// be distributed across rooms (one list per requested room).
func BuildSaveBooking(sc models.SearchContext, sel models.OfferPayload, allocation string, contact models.Contact, rooms [][]models.Passenger, remarks string) ([]*supplier.Node, error) {
	if err := validateStay(sc); err != nil {
		return nil, err
	}
	if allocation == "" {
		return nil, newValidationError("allocation", "allocation token is required")
	}
	if contact.Email == "" || contact.LastName == "" {
		return nil, newValidationError("contact", "email and last name are required")
	}
	if len(rooms) != len(sc.Rooms) {
		return nil, newValidationError("passengers", "expected passenger lists for %d rooms, got %d", len(sc.Rooms), len(rooms))
	}

	details := buildBookingDetails(sc)
	booking := supplier.NewNode("booking").
		Add("hotelCode", strconv.Itoa(sc.HotelID)).
		Add("roomTypeCode", sel.RoomTypeCode).
		Add("rateBasis", sel.RateBasis)
	booking.AddChild(supplier.NewNode("allocationDetails").Add("token", allocation))

	customer := supplier.NewNode("customerDetails").
		Add("email", contact.Email).
		Add("phone", contact.Phone).
		Add("firstName", contact.FirstName).
		Add("lastName", contact.LastName)
	booking.AddChild(customer)

	table := utils.GetSalutations()
	roomsNode := supplier.NewNode("passengersDetails").SetAttr("no", strconv.Itoa(len(rooms)))
	for i, passengers := range rooms {
		room := supplier.NewNode("room").SetAttr("runno", strconv.Itoa(i))
		for j, p := range passengers {
			pax := supplier.NewNode("passenger").SetAttr("runno", strconv.Itoa(j))
			pax.Add("salutation", salutationCode(table, p.Salutation)).
				Add("firstName", p.FirstName).
				Add("lastName", p.LastName)
			if p.Child {
				pax.Add("isChild", "yes").Add("age", strconv.Itoa(p.Age))
			}
			if p.Leading {
				pax.Add("leading", "yes")
			}
			room.AddChild(pax)
		}
		roomsNode.AddChild(room)
	}
	booking.AddChild(roomsNode)

	if remarks != "" {
		booking.Add("specialRequests", remarks)
	}

	return []*supplier.Node{details, booking}, nil
}

// salutationCode maps a caller-supplied salutation (code or display title)
// to the supplier's numeric code.
func salutationCode(table *utils.SalutationTable, salutation string) string {
	if salutation == "" {
		return table.Code("Mr")
	}
	if isDigits(salutation) {
		return salutation
	}
	title := strings.ToLower(salutation)
	title = strings.ToUpper(title[:1]) + title[1:]
	return table.Code(title)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// MapSaveBooking extracts the itinerary identifiers from a savebooking
// response.
func MapSaveBooking(root *supplier.Node) (*SaveResult, error) {
	res := &SaveResult{
		ItineraryBookingCode: root.Value("bookingCode"),
	}
	if services := root.First("servicesBooked"); services != nil {
		if svc := services.First("service"); svc != nil {
			res.ServiceReferenceNumber = svc.Value("referenceNumber")
		}
	}
	if res.ServiceReferenceNumber == "" {
		res.ServiceReferenceNumber = root.Value("referenceNumber")
	}
	if res.ItineraryBookingCode == "" {
		return nil, newValidationError("response", "savebooking response carried no booking code")
	}
	return res, nil
}
