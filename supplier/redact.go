package supplier

import "regexp"

// Wire bodies are retained in the step ledger for diagnosis; credentials and
// allocation tokens must never land there in the clear.
var (
	passwordPattern   = regexp.MustCompile(`<password>[^<]*</password>`)
	allocElemPattern  = regexp.MustCompile(`<allocationDetails>[^<]*</allocationDetails>`)
	allocTokenPattern = regexp.MustCompile(`<token>[^<]*</token>`)
	allocAttrPattern  = regexp.MustCompile(`allocationDetails="[^"]*"`)
)

// Redact strips credentials and allocation tokens from a raw wire body.
// Allocation appears in three wire shapes: a bare element, a nested token
// element on requests, and an attribute.
func Redact(body string) string {
	body = passwordPattern.ReplaceAllString(body, "<password>[redacted]</password>")
	body = allocElemPattern.ReplaceAllString(body, "<allocationDetails>[redacted]</allocationDetails>")
	body = allocTokenPattern.ReplaceAllString(body, "<token>[redacted]</token>")
	body = allocAttrPattern.ReplaceAllString(body, `allocationDetails="[redacted]"`)
	return body
}
