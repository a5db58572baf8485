package flow

import (
	"context"
	"time"

	"staybridge/models"
	"staybridge/supplier/mappers"

	"go.uber.org/zap"
)

// CancelQuote quotes the penalty for cancelling now. For a confirmed booking
// the supplier is asked via cancelbooking in test mode; before confirmation
// nothing has been charged, so the quote is a local zero.
func (s *DefaultFlowService) CancelQuote(ctx context.Context, actor models.Actor, flowID, reason, idemKey string) (*models.Flow, error) {
	f, err := s.loadOwned(actor, flowID)
	if err != nil {
		return nil, err
	}
	if replayed, err := s.replay(flowID, models.StepCancelQuote, idemKey); replayed != nil || err != nil {
		return replayed, err
	}
	// Re-quoting refreshes a stale penalty estimate.
	if err := requireStatus(f, "quote cancellation of",
		models.FlowSaved, models.FlowPriced, models.FlowPreauthed, models.FlowConfirmed, models.FlowCancelQuoted); err != nil {
		return nil, err
	}

	prev := f.Status
	if f.FinalBookingCode == "" {
		// No supplier money is at stake yet.
		f.CancelQuote = &models.CancelQuote{Penalty: 0, Currency: s.quoteCurrency(f), At: time.Now()}
		f.Status = models.FlowCancelQuoted
		if err := s.persistTransition(f, prev); err != nil {
			return nil, err
		}
		entry := newStep(f, models.StepCancelQuote, idemKey)
		entry.Success = true
		entry.FlowStatus = f.Status
		s.record(entry)
		return f, nil
	}

	payload, err := mappers.BuildCancelBooking(f.FinalBookingCode, f.ServiceReferenceNumber)
	if err != nil {
		return nil, err
	}

	entry := newStep(f, models.StepCancelQuote, idemKey)
	res, err := s.sendWithRetry(ctx, mappers.CommandCancelBooking, payload)
	applyResult(entry, mappers.CommandCancelBooking, res)
	if err != nil {
		applyError(entry, err)
		s.record(entry)
		return nil, classify(err)
	}

	quote := mappers.MapCancelBooking(res.Root)
	if quote.Currency == "" {
		quote.Currency = s.quoteCurrency(f)
	}

	f.CancelQuote = &models.CancelQuote{Penalty: quote.Penalty, Currency: quote.Currency, At: time.Now()}
	f.Status = models.FlowCancelQuoted
	if err := s.persistTransition(f, prev); err != nil {
		return nil, err
	}

	entry.Success = true
	entry.Total = quote.Penalty
	entry.Currency = quote.Currency
	entry.FlowStatus = f.Status
	s.record(entry)

	s.Logger.Info("cancellation quoted",
		zap.String("flow", f.ID),
		zap.Float64("penalty", quote.Penalty))
	return f, nil
}

// Cancel commits the cancellation. A confirmed booking goes through
// confirmbooking with the quoted penalty; an unconfirmed flow tears down the
// itinerary placeholder with deleteitinerary. The payment balance returned to
// the guest is the held amount minus the penalty, clamped at zero, and any
// card hold is released or refunded for that balance.
func (s *DefaultFlowService) Cancel(ctx context.Context, actor models.Actor, flowID, reason, idemKey string) (*models.Flow, error) {
	f, err := s.loadOwned(actor, flowID)
	if err != nil {
		return nil, err
	}
	if replayed, err := s.replay(flowID, models.StepCancel, idemKey); replayed != nil || err != nil {
		return replayed, err
	}
	if err := requireStatus(f, "cancel",
		models.FlowSaved, models.FlowPriced, models.FlowPreauthed, models.FlowConfirmed, models.FlowCancelQuoted); err != nil {
		return nil, err
	}

	if f.FinalBookingCode != "" {
		return s.cancelConfirmed(ctx, f, reason, idemKey)
	}
	return s.cancelUnconfirmed(ctx, f, reason, idemKey)
}

func (s *DefaultFlowService) cancelConfirmed(ctx context.Context, f *models.Flow, reason, idemKey string) (*models.Flow, error) {
	// Commit against a fresh quote when none was taken in this state.
	if f.CancelQuote == nil {
		quoted, err := s.CancelQuote(ctx, models.Actor{UserID: f.UserID}, f.ID, reason, "")
		if err != nil {
			return nil, err
		}
		f = quoted
	}

	payload, err := mappers.BuildConfirmCancellation(f.FinalBookingCode, f.ServiceReferenceNumber, f.CancelQuote.Penalty)
	if err != nil {
		return nil, err
	}

	entry := newStep(f, models.StepCancel, idemKey)
	res, err := s.sendWithRetry(ctx, mappers.CommandConfirmBooking, payload)
	applyResult(entry, mappers.CommandConfirmBooking, res)
	if err != nil {
		applyError(entry, err)
		s.record(entry)
		return nil, classify(err)
	}

	committed := mappers.MapConfirmCancellation(res.Root)
	penalty := committed.Penalty
	if penalty == 0 && f.CancelQuote != nil {
		penalty = f.CancelQuote.Penalty
	}
	currency := committed.Currency
	if currency == "" {
		currency = s.quoteCurrency(f)
	}

	balance := f.PaidAmount() - penalty
	if balance < 0 {
		balance = 0
	}
	return s.finishCancel(ctx, f, entry, &models.CancelResult{
		Penalty:        penalty,
		PaymentBalance: balance,
		Currency:       currency,
		Reason:         reason,
		At:             time.Now(),
	})
}

func (s *DefaultFlowService) cancelUnconfirmed(ctx context.Context, f *models.Flow, reason, idemKey string) (*models.Flow, error) {
	entry := newStep(f, models.StepCancel, idemKey)

	// A flow that never reached save has no supplier-side itinerary to tear
	// down.
	if f.ItineraryBookingCode != "" {
		payload, err := mappers.BuildDeleteItinerary(f.ItineraryBookingCode)
		if err != nil {
			return nil, err
		}
		res, err := s.sendWithRetry(ctx, mappers.CommandDeleteItinerary, payload)
		applyResult(entry, mappers.CommandDeleteItinerary, res)
		if err != nil {
			applyError(entry, err)
			s.record(entry)
			return nil, classify(err)
		}
	}

	balance := f.PaidAmount()
	return s.finishCancel(ctx, f, entry, &models.CancelResult{
		Penalty:        0,
		PaymentBalance: balance,
		Currency:       s.quoteCurrency(f),
		Reason:         reason,
		At:             time.Now(),
	})
}

// finishCancel releases any card hold for the payment balance, persists the
// terminal state and records the ledger entry.
func (s *DefaultFlowService) finishCancel(ctx context.Context, f *models.Flow, entry *models.Step, result *models.CancelResult) (*models.Flow, error) {
	if f.PaymentIntentID != "" && s.Payments != nil {
		refundID, err := s.Payments.Release(ctx, f.PaymentIntentID, result.PaymentBalance, result.Currency)
		if err != nil {
			s.Logger.Error("card hold release failed after cancellation",
				zap.String("flow", f.ID),
				zap.String("intent", f.PaymentIntentID),
				zap.Error(err))
		} else {
			result.RefundID = refundID
		}
	}

	prev := f.Status
	f.CancelResult = result
	f.Status = models.FlowCancelled
	if err := s.persistTransition(f, prev); err != nil {
		return nil, err
	}

	entry.Success = true
	entry.Total = result.Penalty
	entry.Currency = result.Currency
	entry.FlowStatus = f.Status
	s.record(entry)

	s.notify(f, "booking_cancelled")
	s.Logger.Info("flow cancelled",
		zap.String("flow", f.ID),
		zap.Float64("penalty", result.Penalty),
		zap.Float64("balance", result.PaymentBalance))
	return f, nil
}

// quoteCurrency picks the currency cancellation figures are expressed in.
func (s *DefaultFlowService) quoteCurrency(f *models.Flow) string {
	if f.Confirmed != nil {
		return f.Confirmed.Currency
	}
	if f.Preauthorized != nil {
		return f.Preauthorized.Currency
	}
	if f.Priced != nil {
		return f.Priced.Currency
	}
	return f.SearchContext.Currency
}

// BookingDetails reads the reservation back from the supplier for
// reconciliation. Available once a final booking code exists.
func (s *DefaultFlowService) BookingDetails(ctx context.Context, actor models.Actor, flowID string) (*models.BookingDetails, error) {
	f, err := s.loadOwned(actor, flowID)
	if err != nil {
		return nil, err
	}
	code := f.FinalBookingCode
	if code == "" {
		code = f.ItineraryBookingCode
	}
	if code == "" {
		return nil, &StateError{Current: f.Status, Operation: "fetch booking details for"}
	}
	payload, err := mappers.BuildBookingDetails(code)
	if err != nil {
		return nil, err
	}
	res, err := s.sendWithRetry(ctx, mappers.CommandBookingDetails, payload)
	if err != nil {
		return nil, classify(err)
	}
	return mappers.MapBookingDetails(res.Root), nil
}
