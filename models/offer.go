package models

import "time"

// CancellationRule is one normalized cancellation-policy window.
type CancellationRule struct {
	FromDate     string  `bson:"from_date,omitempty" json:"fromDate,omitempty"` // YYYY-MM-DD, empty = open start
	ToDate       string  `bson:"to_date,omitempty" json:"toDate,omitempty"`     // YYYY-MM-DD, empty = open end
	Charge       float64 `bson:"charge" json:"charge"`
	ChargeType   string  `bson:"charge_type,omitempty" json:"chargeType,omitempty"` // "amount" | "percentage" | "nights"
	NoShowPolicy bool    `bson:"no_show,omitempty" json:"noShow,omitempty"`
	NonRefundable bool   `bson:"non_refundable,omitempty" json:"nonRefundable,omitempty"`
}

// OfferPayload is the signed content of an offer token: one specific
// room-type + rate-basis combination a caller can commit to later. It is
// never persisted server-side; the HMAC signature and expiry make it
// self-verifying.
type OfferPayload struct {
	HotelID       int                `json:"hotelId"`
	FromDate      string             `json:"fromDate"`
	ToDate        string             `json:"toDate"`
	Currency      string             `json:"currency"`
	RoomTypeCode  string             `json:"roomTypeCode"`
	RoomTypeName  string             `json:"roomTypeName,omitempty"`
	RateBasis     string             `json:"rateBasis"`
	RateBasisName string             `json:"rateBasisName,omitempty"`
	Total         float64            `json:"total"`
	MinSelling    float64            `json:"minSelling,omitempty"`
	MealsIncluded string             `json:"mealsIncluded,omitempty"`
	Refundable    bool               `json:"refundable"`
	Cancellation  []CancellationRule `json:"cancellation,omitempty"`
	Allocation    string             `json:"allocation"` // opaque supplier allocation token at selection time
	IssuedAt      int64              `json:"iat"`
	ExpiresAt     int64              `json:"exp"`
}

// Expired reports whether the payload's expiry has passed.
func (p OfferPayload) Expired(now time.Time) bool {
	return p.ExpiresAt > 0 && now.Unix() > p.ExpiresAt
}

// Offer is the caller-facing projection of one bookable combination: the
// payload plus its signed token.
type Offer struct {
	OfferPayload
	Token string `json:"token"`
}
