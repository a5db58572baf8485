package utils

import (
	"strings"
	"testing"
	"time"

	"staybridge/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayload() models.OfferPayload {
	return models.OfferPayload{
		HotelID:      15546,
		FromDate:     "2025-12-01",
		ToDate:       "2025-12-04",
		Currency:     "USD",
		RoomTypeCode: "DBL-STD",
		RateBasis:    "1",
		Total:        250,
		Allocation:   "a1b2c3",
	}
}

func TestOfferTokenRoundTrip(t *testing.T) {
	codec := NewOfferTokenCodec("test-secret", 15*time.Minute)

	token, err := codec.Sign(testPayload())
	require.NoError(t, err)

	got, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, 15546, got.HotelID)
	assert.Equal(t, "DBL-STD", got.RoomTypeCode)
	assert.Equal(t, "a1b2c3", got.Allocation)
	assert.NotZero(t, got.IssuedAt)
	assert.Greater(t, got.ExpiresAt, got.IssuedAt)
}

func TestOfferTokenRejectsTampering(t *testing.T) {
	codec := NewOfferTokenCodec("test-secret", 15*time.Minute)
	token, err := codec.Sign(testPayload())
	require.NoError(t, err)

	// Flip one character in the payload segment.
	idx := strings.Index(token, ".")
	require.Positive(t, idx)
	flipped := []byte(token)
	if flipped[0] == 'A' {
		flipped[0] = 'B'
	} else {
		flipped[0] = 'A'
	}

	_, err = codec.Verify(string(flipped))
	assert.ErrorIs(t, err, ErrOfferTokenInvalid)
}

func TestOfferTokenRejectsWrongKey(t *testing.T) {
	codec := NewOfferTokenCodec("test-secret", 15*time.Minute)
	other := NewOfferTokenCodec("other-secret", 15*time.Minute)

	token, err := codec.Sign(testPayload())
	require.NoError(t, err)

	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrOfferTokenInvalid)
}

func TestOfferTokenExpiry(t *testing.T) {
	codec := NewOfferTokenCodec("test-secret", 15*time.Minute)

	payload := testPayload()
	payload.IssuedAt = time.Now().Add(-time.Hour).Unix()
	payload.ExpiresAt = time.Now().Add(-30 * time.Minute).Unix()

	token, err := codec.Sign(payload)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrOfferTokenExpired)
}

func TestOfferTokenMalformed(t *testing.T) {
	codec := NewOfferTokenCodec("test-secret", 15*time.Minute)

	for _, token := range []string{"", "no-dot", "a.b.c", "!!!.###"} {
		_, err := codec.Verify(token)
		assert.ErrorIs(t, err, ErrOfferTokenInvalid, "token %q", token)
	}
}
