package flow

import (
	"context"
	"math"
	"time"

	"staybridge/models"
	"staybridge/supplier/mappers"

	"go.uber.org/zap"
)

// Preauth runs bookitinerary in preauth mode, committing the supplier to the
// priced amount and yielding the order code and authorisation id needed to
// confirm. When a guest payment token is supplied, a card hold for the priced
// amount is placed first.
func (s *DefaultFlowService) Preauth(ctx context.Context, actor models.Actor, flowID, paymentToken, idemKey string) (*models.Flow, error) {
	f, err := s.loadOwned(actor, flowID)
	if err != nil {
		return nil, err
	}
	if replayed, err := s.replay(flowID, models.StepPreauth, idemKey); replayed != nil || err != nil {
		return replayed, err
	}
	if err := requireStatus(f, "preauth", models.FlowPriced); err != nil {
		return nil, err
	}

	if paymentToken != "" && s.Payments != nil {
		holdKey := "hold:" + f.ID
		if idemKey != "" {
			holdKey += ":" + idemKey
		}
		intentID, err := s.Payments.Hold(ctx, holdKey, paymentToken, f.Priced.Currency, f.Priced.Total)
		if err != nil {
			return nil, err
		}
		f.PaymentIntentID = intentID
	}

	payload, err := mappers.BuildBookItinerary(mappers.ItineraryParams{
		BookingCode:            f.ItineraryBookingCode,
		ServiceReferenceNumber: f.ServiceReferenceNumber,
		Allocation:             f.AllocationCurrent,
		Mode:                   mappers.ConfirmPreauth,
		Total:                  f.Priced.Total,
		Currency:               f.Priced.Currency,
	})
	if err != nil {
		return nil, err
	}

	entry := newStep(f, models.StepPreauth, idemKey)
	res, err := s.sendWithRetry(ctx, mappers.CommandBookItinerary, payload)
	applyResult(entry, mappers.CommandBookItinerary, res)
	if err != nil {
		applyError(entry, err)
		s.record(entry)
		return nil, classify(err)
	}

	auth, err := mappers.MapBookItinerary(res.Root)
	if err != nil {
		applyError(entry, err)
		s.record(entry)
		return nil, classify(err)
	}
	if math.Abs(auth.Total-f.Priced.Total) > 0.005 {
		s.Logger.Warn("preauth total drifted from priced snapshot",
			zap.String("flow", f.ID),
			zap.Float64("priced", f.Priced.Total),
			zap.Float64("preauthorized", auth.Total))
	}

	prev := f.Status
	f.SupplierOrderCode = auth.OrderCode
	f.SupplierAuthorisationID = auth.AuthorisationID
	if auth.Allocation != "" {
		f.AllocationCurrent = auth.Allocation
	}
	f.Preauthorized = &models.PriceSnapshot{
		Total:      auth.Total,
		Currency:   auth.Currency,
		Allocation: f.AllocationCurrent,
		At:         time.Now(),
	}
	f.Status = models.FlowPreauthed
	if err := s.persistTransition(f, prev); err != nil {
		return nil, err
	}

	entry.Success = true
	entry.AllocationOut = f.AllocationCurrent
	entry.SupplierOrderCode = auth.OrderCode
	entry.SupplierAuthorisationID = auth.AuthorisationID
	entry.Total = auth.Total
	entry.Currency = auth.Currency
	entry.FlowStatus = f.Status
	s.record(entry)

	s.Logger.Info("flow preauthorized",
		zap.String("flow", f.ID),
		zap.String("orderCode", auth.OrderCode),
		zap.Float64("total", auth.Total))
	return f, nil
}
