package flow

import (
	"context"

	"staybridge/models"
)

// StartResult is the outcome of opening a new flow: the persisted saga plus
// one signed offer per bookable room-type/rate-basis combination.
type StartResult struct {
	Flow   *models.Flow   `json:"flow"`
	Offers []models.Offer `json:"offers"`
}

// FlowService drives the booking saga. Every transition resolves access,
// checks the step ledger for an idempotent replay, calls the supplier
// through the command mappers, and persists the flow plus a ledger entry.
type FlowService interface {
	Start(ctx context.Context, actor models.Actor, sc models.SearchContext) (*StartResult, error)
	Select(ctx context.Context, actor models.Actor, flowID, offerToken string) (*models.Flow, error)
	Block(ctx context.Context, actor models.Actor, flowID, idemKey string) (*models.Flow, error)
	Save(ctx context.Context, actor models.Actor, flowID string, input models.SaveBookingInput, idemKey string) (*models.Flow, error)
	Price(ctx context.Context, actor models.Actor, flowID, displayCurrency, idemKey string) (*models.Flow, error)
	Preauth(ctx context.Context, actor models.Actor, flowID, paymentToken, idemKey string) (*models.Flow, error)
	Confirm(ctx context.Context, actor models.Actor, flowID, idemKey string) (*models.Flow, error)
	CancelQuote(ctx context.Context, actor models.Actor, flowID, reason, idemKey string) (*models.Flow, error)
	Cancel(ctx context.Context, actor models.Actor, flowID, reason, idemKey string) (*models.Flow, error)

	Get(ctx context.Context, actor models.Actor, flowID string) (*models.Flow, error)
	ListByUser(ctx context.Context, actor models.Actor) ([]models.Flow, error)
	BookingDetails(ctx context.Context, actor models.Actor, flowID string) (*models.BookingDetails, error)
}
