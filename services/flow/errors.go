package flow

import (
	"errors"
	"fmt"

	"staybridge/supplier"
)

// NotFoundError marks a flow id that does not exist.
type NotFoundError struct {
	FlowID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("flow %s not found", e.FlowID)
}

// AccessError marks a caller acting on a flow it does not own without an
// elevated role.
type AccessError struct {
	FlowID string
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("not allowed to act on flow %s", e.FlowID)
}

// StateError marks a transition called out of order.
type StateError struct {
	Current   string
	Operation string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s a flow in state %s", e.Operation, e.Current)
}

// ClassifiedError is a supplier failure mapped through the error taxonomy.
// Raw supplier text stays in the step ledger; only UserMessage is shown to
// end users.
type ClassifiedError struct {
	Kind        string
	UserMessage string
	Retryable   bool
	Code        int
	Details     string
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s (code=%d): %s", e.Kind, e.Code, e.UserMessage)
}

// classify wraps a supplier error into a ClassifiedError. Transport-level
// failures become supplier_unavailable.
func classify(err error) *ClassifiedError {
	var perr *supplier.ProtocolError
	if errors.As(err, &perr) {
		cls := perr.Classify()
		return &ClassifiedError{
			Kind:        cls.Kind,
			UserMessage: cls.UserMessage,
			Retryable:   cls.Retryable,
			Code:        perr.Code,
			Details:     perr.Details,
		}
	}
	return &ClassifiedError{
		Kind:        supplier.KindSupplierUnavailable,
		UserMessage: "The supplier is temporarily unavailable. Please try again.",
		Retryable:   true,
	}
}
