package flow

import (
	"context"
	"time"

	"staybridge/models"
	"staybridge/supplier/mappers"

	"go.uber.org/zap"
)

// Price invokes bookitinerary in check mode (zero-amount) to obtain the
// authoritative price and the current allocation, and records the priced
// snapshot. An optional display currency attaches a short-TTL FX quote,
// best-effort.
func (s *DefaultFlowService) Price(ctx context.Context, actor models.Actor, flowID, displayCurrency, idemKey string) (*models.Flow, error) {
	f, err := s.loadOwned(actor, flowID)
	if err != nil {
		return nil, err
	}
	if replayed, err := s.replay(flowID, models.StepPrice, idemKey); replayed != nil || err != nil {
		return replayed, err
	}
	// Re-pricing an already-priced flow refreshes the snapshot.
	if err := requireStatus(f, "price", models.FlowSaved, models.FlowPriced); err != nil {
		return nil, err
	}

	payload, err := mappers.BuildBookItinerary(mappers.ItineraryParams{
		BookingCode:            f.ItineraryBookingCode,
		ServiceReferenceNumber: f.ServiceReferenceNumber,
		Allocation:             f.AllocationCurrent,
		Mode:                   mappers.ConfirmCheck,
	})
	if err != nil {
		return nil, err
	}

	entry := newStep(f, models.StepPrice, idemKey)
	res, err := s.sendWithRetry(ctx, mappers.CommandBookItinerary, payload)
	applyResult(entry, mappers.CommandBookItinerary, res)
	if err != nil {
		applyError(entry, err)
		s.record(entry)
		return nil, classify(err)
	}

	priced, err := mappers.MapBookItinerary(res.Root)
	if err != nil {
		applyError(entry, err)
		s.record(entry)
		return nil, classify(err)
	}

	snapshot := &models.PriceSnapshot{
		Total:      priced.Total,
		Currency:   priced.Currency,
		Allocation: priced.Allocation,
		At:         time.Now(),
	}
	if displayCurrency != "" && displayCurrency != priced.Currency && s.Currency != nil {
		quote, err := s.Currency.Convert(ctx, priced.Total, displayCurrency)
		if err != nil {
			s.Logger.Warn("fx quote unavailable, pricing continues in supplier currency",
				zap.String("flow", f.ID),
				zap.String("target", displayCurrency),
				zap.Error(err))
		} else {
			snapshot.FX = quote
		}
	}

	prev := f.Status
	if priced.Allocation != "" {
		f.AllocationCurrent = priced.Allocation
	}
	f.Priced = snapshot
	f.Status = models.FlowPriced
	if err := s.persistTransition(f, prev); err != nil {
		return nil, err
	}

	entry.Success = true
	entry.AllocationOut = f.AllocationCurrent
	entry.Total = priced.Total
	entry.Currency = priced.Currency
	entry.FlowStatus = f.Status
	s.record(entry)

	s.Logger.Info("flow priced",
		zap.String("flow", f.ID),
		zap.Float64("total", priced.Total),
		zap.String("currency", priced.Currency))
	return f, nil
}
