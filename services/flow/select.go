package flow

import (
	"context"

	"staybridge/models"

	"go.uber.org/zap"
)

// Select verifies the offer token and commits the flow to that combination.
// Pure verification, no supplier call: the step is idempotent by
// construction.
func (s *DefaultFlowService) Select(_ context.Context, actor models.Actor, flowID, offerToken string) (*models.Flow, error) {
	f, err := s.loadOwned(actor, flowID)
	if err != nil {
		return nil, err
	}

	payload, err := s.Tokens.Verify(offerToken)
	if err != nil {
		return nil, err
	}

	// Repeating the same selection is a no-op.
	if f.Status == models.FlowOfferSelected && f.SelectedOffer != nil &&
		f.SelectedOffer.RoomTypeCode == payload.RoomTypeCode &&
		f.SelectedOffer.RateBasis == payload.RateBasis {
		return f, nil
	}
	if err := requireStatus(f, "select an offer for", models.FlowStarted); err != nil {
		return nil, err
	}

	// The token must belong to this flow's search.
	if payload.HotelID != f.SearchContext.HotelID ||
		payload.FromDate != f.SearchContext.FromDate ||
		payload.ToDate != f.SearchContext.ToDate {
		return nil, &StateError{Current: f.Status, Operation: "select a foreign offer for"}
	}

	prev := f.Status
	f.SelectedOffer = payload
	f.AllocationCurrent = payload.Allocation
	f.Status = models.FlowOfferSelected
	if err := s.persistTransition(f, prev); err != nil {
		return nil, err
	}

	entry := newStep(f, models.StepSelect, "")
	entry.Success = true
	entry.AllocationOut = f.AllocationCurrent
	entry.FlowStatus = f.Status
	s.record(entry)

	s.Logger.Info("offer selected",
		zap.String("flow", f.ID),
		zap.String("roomType", payload.RoomTypeCode),
		zap.String("rateBasis", payload.RateBasis))
	return f, nil
}
