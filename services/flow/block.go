package flow

import (
	"context"

	"staybridge/models"
	"staybridge/supplier"
	"staybridge/supplier/mappers"

	"go.uber.org/zap"
)

// Block re-queries rates for the stored selection to confirm it still
// exists and to obtain a fresh allocation token. When the wire response
// carries no matching room/rate the failure is a no_availability protocol
// error constructed locally, and the flow does not advance.
func (s *DefaultFlowService) Block(ctx context.Context, actor models.Actor, flowID, idemKey string) (*models.Flow, error) {
	f, err := s.loadOwned(actor, flowID)
	if err != nil {
		return nil, err
	}
	if replayed, err := s.replay(flowID, models.StepBlock, idemKey); replayed != nil || err != nil {
		return replayed, err
	}
	if err := requireStatus(f, "block", models.FlowOfferSelected); err != nil {
		return nil, err
	}
	if f.SelectedOffer == nil || f.AllocationCurrent == "" {
		return nil, &StateError{Current: f.Status, Operation: "block"}
	}

	payload, err := mappers.BuildRoomRates(f.SearchContext, *f.SelectedOffer, f.AllocationCurrent)
	if err != nil {
		return nil, err
	}

	entry := newStep(f, models.StepBlock, idemKey)
	res, err := s.sendWithRetry(ctx, mappers.CommandRoomRates, payload)
	applyResult(entry, mappers.CommandRoomRates, res)
	if err != nil {
		applyError(entry, err)
		s.record(entry)
		return nil, classify(err)
	}

	candidates := mappers.MapRoomRates(res.Root)
	match := mappers.FindCandidate(candidates, f.SelectedOffer.RoomTypeCode, f.SelectedOffer.RateBasis)
	if match == nil || match.Allocation == "" {
		perr := supplier.NewLocalError(mappers.CommandRoomRates, supplier.CodeNoAvailability,
			"selected room/rate combination no longer offered")
		applyError(entry, perr)
		s.record(entry)
		return nil, classify(perr)
	}

	prev := f.Status
	f.AllocationCurrent = match.Allocation
	f.Status = models.FlowBlocked
	if err := s.persistTransition(f, prev); err != nil {
		return nil, err
	}

	entry.Success = true
	entry.AllocationOut = f.AllocationCurrent
	entry.Total = match.Total
	entry.Currency = match.Currency
	entry.FlowStatus = f.Status
	s.record(entry)

	s.Logger.Info("rate blocked", zap.String("flow", f.ID))
	return f, nil
}
