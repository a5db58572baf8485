package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"staybridge/models"

	"golang.org/x/crypto/pbkdf2"
)

var (
	ErrOfferTokenInvalid = errors.New("offer token signature is invalid")
	ErrOfferTokenExpired = errors.New("offer token has expired")
)

// OfferTokenCodec signs room/rate selections into compact self-verifying
// tokens so search results never need to be persisted. Token format:
// base64url(json payload) + "." + base64url(hmac-sha256 signature).
type OfferTokenCodec struct {
	key []byte
	ttl time.Duration
}

// NewOfferTokenCodec derives the signing key from the application secret.
// The codec is read-only after construction and safe for concurrent use.
func NewOfferTokenCodec(secret string, ttl time.Duration) *OfferTokenCodec {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	key := pbkdf2.Key([]byte(secret), []byte("staybridge/offer-token"), 4096, 32, sha256.New)
	return &OfferTokenCodec{key: key, ttl: ttl}
}

// Sign serializes and signs the payload. IssuedAt/ExpiresAt are stamped here
// unless the payload already carries an expiry.
func (c *OfferTokenCodec) Sign(payload models.OfferPayload) (string, error) {
	now := time.Now()
	if payload.IssuedAt == 0 {
		payload.IssuedAt = now.Unix()
	}
	if payload.ExpiresAt == 0 {
		payload.ExpiresAt = now.Add(c.ttl).Unix()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize offer payload: %w", err)
	}
	sig := c.sign(data)
	return base64.RawURLEncoding.EncodeToString(data) + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

// Verify recomputes the HMAC over the data segment and rejects on mismatch
// or expiry.
func (c *OfferTokenCodec) Verify(token string) (*models.OfferPayload, error) {
	dataPart, sigPart, ok := strings.Cut(token, ".")
	if !ok {
		return nil, ErrOfferTokenInvalid
	}
	data, err := base64.RawURLEncoding.DecodeString(dataPart)
	if err != nil {
		return nil, ErrOfferTokenInvalid
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return nil, ErrOfferTokenInvalid
	}
	if !hmac.Equal(sig, c.sign(data)) {
		return nil, ErrOfferTokenInvalid
	}
	var payload models.OfferPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, ErrOfferTokenInvalid
	}
	if payload.Expired(time.Now()) {
		return nil, ErrOfferTokenExpired
	}
	return &payload, nil
}

// TTL returns the default token lifetime.
func (c *OfferTokenCodec) TTL() time.Duration {
	return c.ttl
}

func (c *OfferTokenCodec) sign(data []byte) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(data)
	return mac.Sum(nil)
}
