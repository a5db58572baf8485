package supplier

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(endpoint string, maxRetries int) *Client {
	return NewClient(Config{
		Endpoint:    endpoint,
		Username:    "agency",
		Password:    "secret",
		CompanyCode: "1234",
		MaxRetries:  maxRetries,
		RatePerSec:  100,
	}, zap.NewNop())
}

const okResponse = `<result tID="TX-1" elapsedTime="42" date="2025-11-20 10:00:00">
  <successful>TRUE</successful>
  <hotels count="1"></hotels>
</result>`

func TestSendBuildsSignedEnvelope(t *testing.T) {
	var captured string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = string(body)
		io.WriteString(w, okResponse)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 0)
	res, err := c.Send(context.Background(), "searchhotels", []*Node{NewNode("hotelCode").Add("code", "15546")})
	require.NoError(t, err)

	assert.Equal(t, "TX-1", res.TransactionID)
	assert.Equal(t, 42, res.ElapsedMS)

	// Envelope carries credentials with a hashed password, never plaintext.
	assert.Contains(t, captured, "<username>agency</username>")
	assert.Contains(t, captured, "<password>5ebe2294ecd0e0f08eab7690d2a6ee69</password>")
	assert.NotContains(t, captured, "secret")
	assert.Contains(t, captured, "<id>1234</id>")
	assert.Contains(t, captured, "<source>1</source>")
	assert.Contains(t, captured, "<product>hotel</product>")
	assert.Contains(t, captured, `<request command="searchhotels">`)

	// Credentials precede the request element.
	assert.Less(t, strings.Index(captured, "<username>"), strings.Index(captured, "<request"))
}

func TestSendBusinessFailureReturnsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<result tID="TX-2" elapsedTime="10" date="2025-11-20 10:00:00">
  <successful>FALSE</successful>
  <error>
    <code>12</code>
    <shortDetails>No availability</shortDetails>
    <details>No rooms available for the requested stay</details>
  </error>
</result>`)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 0)
	res, err := c.Send(context.Background(), "searchhotels", nil)
	require.Error(t, err)
	require.NotNil(t, res)

	perr, ok := err.(*ProtocolError)
	require.True(t, ok)
	assert.Equal(t, 12, perr.Code)
	assert.Equal(t, "No availability", perr.Short)
	assert.Equal(t, "TX-2", perr.TransactionID)
	assert.Equal(t, KindNoAvailability, perr.Classify().Kind)
}

func TestSendRetriesTransportFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		io.WriteString(w, okResponse)
	}))
	defer srv.Close()

	c := testClient(srv.URL, 3)
	res, err := c.Send(context.Background(), "searchhotels", nil)
	require.NoError(t, err)
	assert.Equal(t, "TX-1", res.TransactionID)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestSendDoesNotRetry4xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	// A 4xx is the gateway rejecting the envelope itself; repeating the
	// same request cannot change the outcome, so no retry budget is spent.
	c := testClient(srv.URL, 3)
	_, err := c.Send(context.Background(), "searchhotels", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestSendGzipRequestAndResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "gzip", r.Header.Get("Content-Encoding"))
		zr, err := gzip.NewReader(r.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.Contains(t, string(body), "<customer>")

		w.Header().Set("Content-Encoding", "gzip")
		zw := gzip.NewWriter(w)
		io.WriteString(zw, okResponse)
		zw.Close()
	}))
	defer srv.Close()

	c := NewClient(Config{
		Endpoint:   srv.URL,
		Username:   "agency",
		Password:   "secret",
		RatePerSec: 100,
		Compress:   true,
	}, zap.NewNop())
	res, err := c.Send(context.Background(), "searchhotels", nil)
	require.NoError(t, err)
	assert.Equal(t, "TX-1", res.TransactionID)
}
