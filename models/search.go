package models

// RoomRequest describes the occupancy requested for one room.
type RoomRequest struct {
	Adults       int    `bson:"adults" json:"adults"`
	ChildrenAges []int  `bson:"children_ages,omitempty" json:"childrenAges,omitempty"`
	RateBasis    string `bson:"rate_basis,omitempty" json:"rateBasis,omitempty"` // optional per-room rate-basis filter
}

// SearchContext is the immutable snapshot of the original search. It is
// captured once at flow start and never mutated afterwards.
type SearchContext struct {
	HotelID     int           `bson:"hotel_id" json:"hotelId"`
	FromDate    string        `bson:"from_date" json:"fromDate"` // YYYY-MM-DD
	ToDate      string        `bson:"to_date" json:"toDate"`     // YYYY-MM-DD
	Currency    string        `bson:"currency" json:"currency"`
	Nationality string        `bson:"nationality,omitempty" json:"nationality,omitempty"` // ISO country code
	Residence   string        `bson:"residence,omitempty" json:"residence,omitempty"`     // ISO country code
	RateBasis   string        `bson:"rate_basis,omitempty" json:"rateBasis,omitempty"`    // global rate-basis filter
	Rooms       []RoomRequest `bson:"rooms" json:"rooms"`
}

// Nights returns the number of nights between FromDate and ToDate, or 0 when
// either date is unparsable. Validation happens in the search mapper; this is
// a convenience for pricing display only.
func (sc SearchContext) Nights() int {
	from, ok1 := parseISODate(sc.FromDate)
	to, ok2 := parseISODate(sc.ToDate)
	if !ok1 || !ok2 {
		return 0
	}
	n := int(to.Sub(from).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}
