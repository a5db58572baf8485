package flow

import (
	"errors"
	"time"

	"staybridge/models"
	"staybridge/supplier"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// replay returns the flow as it stood after a previously-completed attempt
// with the same (flowID, step, idempotencyKey), or nil when this attempt is
// new. An empty key never dedups: each unkeyed call is its own attempt.
func (s *DefaultFlowService) replay(flowID, step, key string) (*models.Flow, error) {
	if key == "" {
		return nil, nil
	}
	entry, err := s.Steps.FindReplay(flowID, step, key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}
	s.Logger.Info("idempotent replay, skipping supplier call",
		zap.String("flow", flowID),
		zap.String("step", step),
		zap.String("key", key))
	f, err := s.Flows.GetByID(flowID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, &NotFoundError{FlowID: flowID}
	}
	return f, nil
}

// newStep opens a ledger entry for one externally-effectful attempt. An
// omitted idempotency key gets a generated one so the unique index always
// has a value.
func newStep(f *models.Flow, stepName, key string) *models.Step {
	if key == "" {
		key = uuid.New().String()
	}
	return &models.Step{
		ID:             uuid.New().String(),
		FlowID:         f.ID,
		Step:           stepName,
		IdempotencyKey: key,
		AllocationIn:   f.AllocationCurrent,
		CreatedAt:      time.Now(),
	}
}

// applyResult copies wire metadata and redacted bodies onto the entry.
func applyResult(entry *models.Step, command string, res *supplier.Result) {
	entry.Command = command
	if res == nil {
		return
	}
	entry.TransactionID = res.TransactionID
	entry.RequestBody = supplier.Redact(string(res.RequestBody))
	entry.ResponseBody = supplier.Redact(string(res.ResponseBody))
}

// applyError marks the entry failed with its classification.
func applyError(entry *models.Step, err error) {
	entry.Success = false
	var perr *supplier.ProtocolError
	if errors.As(err, &perr) {
		cls := perr.Classify()
		entry.ErrorKind = cls.Kind
		entry.ErrorCode = perr.Code
		entry.ErrorText = perr.Details
		if entry.RequestBody == "" {
			entry.RequestBody = perr.RequestBody
		}
		if entry.ResponseBody == "" {
			entry.ResponseBody = perr.ResponseBody
		}
		return
	}
	entry.ErrorKind = supplier.KindSupplierUnavailable
	entry.ErrorText = err.Error()
}

// record appends the entry to the ledger. Ledger writes must never mask the
// transition outcome, so failures are logged and swallowed.
func (s *DefaultFlowService) record(entry *models.Step) {
	if err := s.Steps.Append(entry); err != nil {
		s.Logger.Error("failed to append step ledger entry",
			zap.String("flow", entry.FlowID),
			zap.String("step", entry.Step),
			zap.Error(err))
	}
}
