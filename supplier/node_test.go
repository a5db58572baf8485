package supplier

import (
	"bytes"
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalNode(t *testing.T, n *Node) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, xml.NewEncoder(&buf).Encode(n))
	return buf.String()
}

func TestNodeMarshalPreservesOrder(t *testing.T) {
	n := NewNode("bookingDetails").
		Add("fromDate", "2025-12-01").
		Add("toDate", "2025-12-04").
		Add("currency", "520")
	n.AddChild(NewNode("rooms").SetAttr("no", "1"))

	out := marshalNode(t, n)
	assert.Equal(t,
		`<bookingDetails><fromDate>2025-12-01</fromDate><toDate>2025-12-04</toDate><currency>520</currency><rooms no="1"></rooms></bookingDetails>`,
		out)
}

func TestNodeMarshalAttributeOrder(t *testing.T) {
	n := NewNode("room").SetAttr("runno", "0").SetAttr("roomTypeCode", "DBL")
	out := marshalNode(t, n)
	assert.Equal(t, `<room runno="0" roomTypeCode="DBL"></room>`, out)
}

func TestParseTree(t *testing.T) {
	root, err := ParseTree([]byte(`<result tID="TX-9">
  <successful>TRUE</successful>
  <hotels count="2">
    <hotel hotelid="15546">
      <hotelName>Imperial Palace</hotelName>
    </hotel>
    <hotel hotelid="99"></hotel>
  </hotels>
</result>`))
	require.NoError(t, err)

	assert.Equal(t, "result", root.Name)
	assert.Equal(t, "TX-9", root.Attr("tID"))
	assert.Equal(t, "TRUE", root.Value("successful"))

	hotels := root.First("hotels")
	require.NotNil(t, hotels)
	assert.Equal(t, 2, hotels.IntValue("count"))
	assert.Len(t, hotels.All("hotel"), 2)
	assert.Equal(t, "Imperial Palace", hotels.All("hotel")[0].Value("hotelName"))
	assert.Equal(t, 15546, hotels.All("hotel")[0].IntValue("hotelid"))
}

func TestValuePrefersAttributeOverChild(t *testing.T) {
	root, err := ParseTree([]byte(`<rate currency="USD"><currency>EUR</currency><total>250.00</total></rate>`))
	require.NoError(t, err)

	assert.Equal(t, "USD", root.Value("currency"))
	assert.Equal(t, 250.0, root.FloatValue("total"))
	assert.Equal(t, "", root.Value("missing"))
	assert.Equal(t, 0, root.IntValue("missing"))
}

func TestRedactHidesSecrets(t *testing.T) {
	body := `<customer><username>agency</username><password>5ebe2294</password>` +
		`<request command="getroomrates"><allocationDetails>opaque-token</allocationDetails></request></customer>`
	redacted := Redact(body)
	assert.NotContains(t, redacted, "5ebe2294")
	assert.NotContains(t, redacted, "opaque-token")
	assert.Contains(t, redacted, "agency")

	attr := `<room allocationDetails="opaque-token" runno="0"></room>`
	assert.NotContains(t, Redact(attr), "opaque-token")

	nested := `<allocationDetails><token>opaque-token</token></allocationDetails>`
	assert.NotContains(t, Redact(nested), "opaque-token")
}
