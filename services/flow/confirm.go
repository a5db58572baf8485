package flow

import (
	"context"
	"time"

	"staybridge/models"
	"staybridge/supplier/mappers"

	"go.uber.org/zap"
)

// Confirm finalizes the booking with bookitinerary in confirm mode, quoting
// the order code and authorisation id obtained at preauth. On success the
// guest card hold, if any, is captured. A non-retryable supplier failure here
// sinks the flow to FAILED: the preauthorized amount is committed on the
// supplier side and the saga cannot be resumed through the normal path.
func (s *DefaultFlowService) Confirm(ctx context.Context, actor models.Actor, flowID, idemKey string) (*models.Flow, error) {
	f, err := s.loadOwned(actor, flowID)
	if err != nil {
		return nil, err
	}
	if replayed, err := s.replay(flowID, models.StepConfirm, idemKey); replayed != nil || err != nil {
		return replayed, err
	}
	if err := requireStatus(f, "confirm", models.FlowPreauthed); err != nil {
		return nil, err
	}

	payload, err := mappers.BuildBookItinerary(mappers.ItineraryParams{
		BookingCode:            f.ItineraryBookingCode,
		ServiceReferenceNumber: f.ServiceReferenceNumber,
		Allocation:             f.AllocationCurrent,
		Mode:                   mappers.ConfirmYes,
		Total:                  f.Preauthorized.Total,
		Currency:               f.Preauthorized.Currency,
		OrderCode:              f.SupplierOrderCode,
		AuthorisationID:        f.SupplierAuthorisationID,
	})
	if err != nil {
		return nil, err
	}

	entry := newStep(f, models.StepConfirm, idemKey)
	res, err := s.sendWithRetry(ctx, mappers.CommandBookItinerary, payload)
	applyResult(entry, mappers.CommandBookItinerary, res)
	if err != nil {
		applyError(entry, err)
		s.record(entry)
		return nil, s.failOnConfirm(f, classify(err))
	}

	booked, err := mappers.MapBookItinerary(res.Root)
	if err != nil {
		applyError(entry, err)
		s.record(entry)
		return nil, s.failOnConfirm(f, classify(err))
	}
	if booked.BookingCode == "" {
		s.Logger.Warn("confirmation returned no final booking code, keeping itinerary code",
			zap.String("flow", f.ID))
		booked.BookingCode = f.ItineraryBookingCode
	}

	prev := f.Status
	f.FinalBookingCode = booked.BookingCode
	f.BookingReferenceNumber = booked.ReferenceNumber
	if booked.Allocation != "" {
		f.AllocationCurrent = booked.Allocation
	}
	f.Confirmed = &models.PriceSnapshot{
		Total:      booked.Total,
		Currency:   booked.Currency,
		Allocation: f.AllocationCurrent,
		At:         time.Now(),
	}
	f.Status = models.FlowConfirmed
	if err := s.persistTransition(f, prev); err != nil {
		return nil, err
	}

	// The booking stands regardless of the capture outcome; a failed capture
	// is settled manually by operations.
	if f.PaymentIntentID != "" && s.Payments != nil {
		if err := s.Payments.Capture(ctx, f.PaymentIntentID); err != nil {
			s.Logger.Error("card capture failed after confirmation",
				zap.String("flow", f.ID),
				zap.String("intent", f.PaymentIntentID),
				zap.Error(err))
		}
	}

	entry.Success = true
	entry.AllocationOut = f.AllocationCurrent
	entry.FinalBookingCode = f.FinalBookingCode
	entry.BookingReferenceNumber = f.BookingReferenceNumber
	entry.Total = booked.Total
	entry.Currency = booked.Currency
	entry.FlowStatus = f.Status
	s.record(entry)

	s.notify(f, "booking_confirmed")
	s.Logger.Info("flow confirmed",
		zap.String("flow", f.ID),
		zap.String("bookingCode", f.FinalBookingCode))
	return f, nil
}

// failOnConfirm sinks the flow to FAILED when the confirmation failure is not
// retryable. Retryable failures leave the flow preauthorized so the caller
// can try again.
func (s *DefaultFlowService) failOnConfirm(f *models.Flow, cerr *ClassifiedError) error {
	if cerr.Retryable {
		return cerr
	}
	prev := f.Status
	f.Status = models.FlowFailed
	f.FailureKey = cerr.Kind
	if err := s.persistTransition(f, prev); err != nil {
		s.Logger.Error("failed to sink flow after confirm failure",
			zap.String("flow", f.ID), zap.Error(err))
	}
	return cerr
}
