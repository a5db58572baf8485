package mappers

import (
	"strconv"

	"staybridge/models"
	"staybridge/supplier"
)

// CommandSearch is the supplier rate-search command.
const CommandSearch = "searchhotels"

// SearchResult is the normalized output of a rate search for one hotel.
type SearchResult struct {
	HotelID    int
	HotelName  string
	Candidates []RateCandidate
}

// BuildSearch validates the search context and produces the searchhotels
// payload.
func BuildSearch(sc models.SearchContext) ([]*supplier.Node, error) {
	if err := validateStay(sc); err != nil {
		return nil, err
	}
	ret := supplier.NewNode("return").
		Add("sortOrder", "price").
		AddChild(supplier.NewNode("fields").
			Add("field", "hotelName").
			Add("field", "rooms"))
	return []*supplier.Node{
		buildBookingDetails(sc),
		supplier.NewNode("hotelCode").Add("code", strconv.Itoa(sc.HotelID)),
		ret,
	}, nil
}

// MapSearch normalizes a searchhotels response into one SearchResult per the
// requested hotel. An empty candidate list is a valid outcome: the caller
// decides whether that is a no-availability condition.
func MapSearch(root *supplier.Node) (*SearchResult, error) {
	hotels := root.First("hotels")
	if hotels == nil {
		return &SearchResult{}, nil
	}
	hotelNodes := hotels.All("hotel")
	if len(hotelNodes) == 0 {
		return &SearchResult{}, nil
	}
	hotel := hotelNodes[0]
	result := &SearchResult{
		HotelID:    hotel.IntValue("hotelid"),
		HotelName:  hotel.Value("hotelName"),
		Candidates: mapRooms(hotel.First("rooms")),
	}
	return result, nil
}
