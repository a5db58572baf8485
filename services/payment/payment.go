package payment

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"
)

// Service places and settles guest card holds. The supplier itself bills the
// agency credit line; the guest's card is held here so confirmation can
// capture the exact priced amount.
type Service interface {
	// Hold authorizes the amount against the guest card without capturing.
	// idempotencyKey makes a retried transition reuse the existing hold.
	Hold(ctx context.Context, idempotencyKey, paymentToken, currency string, amount float64) (string, error)
	// Capture settles a previously-placed hold.
	Capture(ctx context.Context, intentID string) error
	// Release cancels an uncaptured hold, or refunds a captured one.
	// Returns the refund id when a refund was issued.
	Release(ctx context.Context, intentID string, refundAmount float64, currency string) (string, error)
}

// StripePaymentService implements Service with manual-capture PaymentIntents.
type StripePaymentService struct {
	Logger *zap.Logger
}

func NewStripePaymentService(logger *zap.Logger) *StripePaymentService {
	return &StripePaymentService{Logger: logger}
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func (s *StripePaymentService) Hold(ctx context.Context, idempotencyKey, paymentToken, currency string, amount float64) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params:        stripe.Params{Context: ctx},
		Amount:        stripe.Int64(minorUnits(amount)),
		Currency:      stripe.String(strings.ToLower(currency)),
		PaymentMethod: stripe.String(paymentToken),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		Confirm:       stripe.Bool(true),
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to place card hold: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusRequiresCapture {
		return pi.ID, fmt.Errorf("card hold ended in unexpected status %s", pi.Status)
	}
	s.Logger.Info("card hold placed", zap.String("intent", pi.ID), zap.Int64("amount", pi.Amount))
	return pi.ID, nil
}

func (s *StripePaymentService) Capture(ctx context.Context, intentID string) error {
	params := &stripe.PaymentIntentCaptureParams{Params: stripe.Params{Context: ctx}}
	pi, err := paymentintent.Capture(intentID, params)
	if err != nil {
		return fmt.Errorf("failed to capture card hold %s: %w", intentID, err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("capture of %s ended in unexpected status %s", intentID, pi.Status)
	}
	return nil
}

func (s *StripePaymentService) Release(ctx context.Context, intentID string, refundAmount float64, currency string) (string, error) {
	pi, err := paymentintent.Get(intentID, &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return "", fmt.Errorf("failed to load payment intent %s: %w", intentID, err)
	}
	switch pi.Status {
	case stripe.PaymentIntentStatusRequiresCapture:
		if _, err := paymentintent.Cancel(intentID, &stripe.PaymentIntentCancelParams{Params: stripe.Params{Context: ctx}}); err != nil {
			return "", fmt.Errorf("failed to cancel hold %s: %w", intentID, err)
		}
		return "", nil
	case stripe.PaymentIntentStatusSucceeded:
		params := &stripe.RefundParams{
			Params:        stripe.Params{Context: ctx},
			PaymentIntent: stripe.String(intentID),
		}
		if refundAmount > 0 {
			params.Amount = stripe.Int64(minorUnits(refundAmount))
		}
		r, err := refund.New(params)
		if err != nil {
			return "", fmt.Errorf("failed to refund %s: %w", intentID, err)
		}
		return r.ID, nil
	default:
		s.Logger.Warn("release skipped, intent not held or captured",
			zap.String("intent", intentID), zap.String("status", string(pi.Status)))
		return "", nil
	}
}
