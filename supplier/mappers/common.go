// Package mappers contains one stateless request/response translator per
// supplier command. Builders validate domain parameters and produce
// ordering-sensitive wire payloads; response mappers normalize the loosely
// typed wire tree into fixed-shape domain records.
package mappers

import (
	"fmt"
	"strconv"
	"time"

	"staybridge/models"
	"staybridge/supplier"
)

const wireDateLayout = "2006-01-02"

// ValidationError is a local builder failure: the request never reached the
// network and should surface as a client error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// MaxChildrenPerRoom caps children per room regardless of adults.
const MaxChildrenPerRoom = 4

// validateStay checks hotel id, dates and room occupancy. Every builder that
// opens a booking-details block calls this first so malformed requests fail
// fast, before any network call.
func validateStay(sc models.SearchContext) error {
	if sc.HotelID <= 0 {
		return newValidationError("hotelId", "must be a positive numeric hotel id")
	}
	from, err := time.Parse(wireDateLayout, sc.FromDate)
	if err != nil {
		return newValidationError("fromDate", "must be a YYYY-MM-DD date")
	}
	to, err := time.Parse(wireDateLayout, sc.ToDate)
	if err != nil {
		return newValidationError("toDate", "must be a YYYY-MM-DD date")
	}
	if !to.After(from) {
		return newValidationError("toDate", "must be after fromDate")
	}
	if sc.Currency == "" {
		return newValidationError("currency", "is required")
	}
	if len(sc.Rooms) == 0 {
		return newValidationError("rooms", "at least one room is required")
	}
	for i, room := range sc.Rooms {
		if err := validateOccupancy(i, room); err != nil {
			return err
		}
	}
	return nil
}

// validateOccupancy enforces the supplier occupancy rule: a room's child
// count must not exceed min(4, 2 × adults).
func validateOccupancy(index int, room models.RoomRequest) error {
	field := fmt.Sprintf("rooms[%d]", index)
	if room.Adults <= 0 {
		return newValidationError(field, "at least one adult is required")
	}
	maxChildren := 2 * room.Adults
	if maxChildren > MaxChildrenPerRoom {
		maxChildren = MaxChildrenPerRoom
	}
	if len(room.ChildrenAges) > maxChildren {
		return newValidationError(field, "at most %d children allowed with %d adults", maxChildren, room.Adults)
	}
	for _, age := range room.ChildrenAges {
		if age < 0 || age > 17 {
			return newValidationError(field, "child age %d is out of range", age)
		}
	}
	return nil
}

// buildBookingDetails emits the stay block shared by every command that
// quotes or books rooms. Element order is a hard supplier contract.
func buildBookingDetails(sc models.SearchContext) *supplier.Node {
	details := supplier.NewNode("bookingDetails").
		Add("fromDate", sc.FromDate).
		Add("toDate", sc.ToDate).
		Add("currency", sc.Currency)

	rooms := supplier.NewNode("rooms").SetAttr("no", strconv.Itoa(len(sc.Rooms)))
	for i, r := range sc.Rooms {
		room := supplier.NewNode("room").SetAttr("runno", strconv.Itoa(i))
		room.Add("adultsCode", strconv.Itoa(r.Adults))

		children := supplier.NewNode("children").SetAttr("no", strconv.Itoa(len(r.ChildrenAges)))
		for j, age := range r.ChildrenAges {
			child := supplier.NewNode("child").SetAttr("runno", strconv.Itoa(j))
			child.Text = strconv.Itoa(age)
			children.AddChild(child)
		}
		room.AddChild(children)

		rateBasis := r.RateBasis
		if rateBasis == "" {
			rateBasis = sc.RateBasis
		}
		if rateBasis == "" {
			rateBasis = "-1" // all rate bases
		}
		room.Add("rateBasis", rateBasis)
		if sc.Nationality != "" {
			room.Add("passengerNationality", sc.Nationality)
		}
		if sc.Residence != "" {
			room.Add("passengerResidence", sc.Residence)
		}
		rooms.AddChild(room)
	}
	details.AddChild(rooms)
	return details
}

// PropertyFee is one mandatory fee collected at the property.
type PropertyFee struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency,omitempty"`
}

// RateCandidate is one normalized room-type + rate-basis combination.
type RateCandidate struct {
	RoomTypeCode  string
	RoomTypeName  string
	RateBasis     string
	RateBasisName string
	Total         float64
	MinSelling    float64
	Currency      string
	MealsIncluded string
	Refundable    bool
	Allocation    string
	Cancellation  []models.CancellationRule
	PropertyFees  []PropertyFee
}

// mapRateBasis normalizes one rateBasis element into a candidate. The wire
// expresses ids and allocation either as attributes or child elements; the
// Value accessor hides that.
func mapRateBasis(roomTypeCode, roomTypeName string, rb *supplier.Node) RateCandidate {
	cand := RateCandidate{
		RoomTypeCode:  roomTypeCode,
		RoomTypeName:  roomTypeName,
		RateBasis:     rb.Value("id"),
		RateBasisName: rb.Value("description"),
		Total:         rb.FloatValue("total"),
		MinSelling:    rb.FloatValue("totalMinimumSelling"),
		Currency:      rb.Value("currencyShort"),
		MealsIncluded: rb.Value("mealsIncluded"),
		Allocation:    rb.Value("allocationDetails"),
		Refundable:    rb.Value("rateType") != "nonRefundable",
	}
	if rules := rb.First("cancellationRules"); rules != nil {
		for _, rule := range rules.All("rule") {
			cand.Cancellation = append(cand.Cancellation, mapCancellationRule(rule))
		}
	}
	if fees := rb.First("propertyFees"); fees != nil {
		for _, fee := range fees.All("fee") {
			cand.PropertyFees = append(cand.PropertyFees, PropertyFee{
				Name:     fee.Value("name"),
				Amount:   fee.FloatValue("amount"),
				Currency: fee.Value("currency"),
			})
		}
	}
	return cand
}

func mapCancellationRule(rule *supplier.Node) models.CancellationRule {
	out := models.CancellationRule{
		FromDate:   rule.Value("fromDate"),
		ToDate:     rule.Value("toDate"),
		ChargeType: "amount",
	}
	switch {
	case rule.First("charge") != nil || rule.Attr("charge") != "":
		out.Charge = rule.FloatValue("charge")
	case rule.First("chargePercentage") != nil:
		out.Charge = rule.FloatValue("chargePercentage")
		out.ChargeType = "percentage"
	case rule.First("chargeNights") != nil:
		out.Charge = rule.FloatValue("chargeNights")
		out.ChargeType = "nights"
	}
	out.NoShowPolicy = rule.Value("noShowPolicy") == "true"
	out.NonRefundable = rule.Value("cancelRestricted") == "true"
	return out
}

// mapRooms walks a rooms block into the flat candidate list.
func mapRooms(roomsNode *supplier.Node) []RateCandidate {
	var out []RateCandidate
	if roomsNode == nil {
		return out
	}
	for _, room := range roomsNode.All("room") {
		for _, rt := range room.All("roomType") {
			code := rt.Value("code")
			name := rt.Value("name")
			bases := rt.First("rateBases")
			if bases == nil {
				continue
			}
			for _, rb := range bases.All("rateBasis") {
				out = append(out, mapRateBasis(code, name, rb))
			}
		}
	}
	return out
}

// FindCandidate locates the candidate matching a stored selection, or nil.
func FindCandidate(candidates []RateCandidate, roomTypeCode, rateBasis string) *RateCandidate {
	for i := range candidates {
		if candidates[i].RoomTypeCode == roomTypeCode && candidates[i].RateBasis == rateBasis {
			return &candidates[i]
		}
	}
	return nil
}
