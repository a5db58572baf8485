package supplier

import "fmt"

// ProtocolError is a business-level failure reported by the supplier
// (successful=FALSE), or constructed locally when a response is well-formed
// but unusable (for example, the blocked rate no longer exists). Transport
// failures never become ProtocolErrors; they are retried and surfaced as
// plain errors by the client.
type ProtocolError struct {
	Command       string
	Code          int
	Short         string
	Details       string
	TransactionID string
	ElapsedMS     int
	Timestamp     string
	RequestBody   string
	ResponseBody  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("supplier %s failed: code=%d %s", e.Command, e.Code, e.Short)
}

// Classify maps the error through the code taxonomy.
func (e *ProtocolError) Classify() Classification {
	return Classify(e.Code)
}

// NewLocalError builds a ProtocolError for a condition detected locally
// rather than reported on the wire.
func NewLocalError(command string, code int, details string) *ProtocolError {
	return &ProtocolError{
		Command: command,
		Code:    code,
		Short:   Classify(code).UserMessage,
		Details: details,
	}
}
