package flow

import (
	"context"
	"time"

	"staybridge/database/repository"
	"staybridge/models"
	"staybridge/services/currency"
	"staybridge/services/payment"
	"staybridge/services/tasks"
	"staybridge/utils"

	"staybridge/supplier"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RetryPolicy bounds the in-transition retry loop for retryable supplier
// failures.
type RetryPolicy struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Attempts  int
}

// DefaultFlowService is the saga controller.
type DefaultFlowService struct {
	Flows    repository.FlowRepository
	Steps    repository.StepRepository
	Supplier *supplier.Client
	Tokens   *utils.OfferTokenCodec

	// Optional collaborators; transitions degrade gracefully without them.
	Currency currency.Service
	Payments payment.Service
	Queue    *asynq.Client

	Logger       *zap.Logger
	Retry        RetryPolicy
	BaseCurrency string
}

// loadOwned fetches the flow and enforces ownership: the caller must own the
// flow or hold an elevated role.
func (s *DefaultFlowService) loadOwned(actor models.Actor, flowID string) (*models.Flow, error) {
	f, err := s.Flows.GetByID(flowID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, &NotFoundError{FlowID: flowID}
	}
	if f.UserID != actor.UserID && !actor.Elevated() {
		return nil, &AccessError{FlowID: flowID}
	}
	return f, nil
}

// requireStatus fails with a StateError unless the flow is in one of the
// allowed states.
func requireStatus(f *models.Flow, operation string, allowed ...string) error {
	for _, a := range allowed {
		if f.Status == a {
			return nil
		}
	}
	return &StateError{Current: f.Status, Operation: operation}
}

// persistTransition saves the flow guarded by its pre-transition status, so
// a concurrent double-submission that slipped past the ledger cannot clobber
// a newer state.
func (s *DefaultFlowService) persistTransition(f *models.Flow, fromStatus string) error {
	f.UpdatedAt = time.Now()
	return s.Flows.UpdateWithStatus(f, fromStatus)
}

// notify enqueues a booking event for asynchronous push delivery.
// Best-effort: enqueue failures are logged, never fatal.
func (s *DefaultFlowService) notify(f *models.Flow, event string) {
	if s.Queue == nil {
		return
	}
	task, opts, err := tasks.NewBookingEventTask(models.NotificationEvent{
		UserID:      f.UserID,
		FlowID:      f.ID,
		Event:       event,
		BookingCode: f.FinalBookingCode,
		HotelID:     f.SearchContext.HotelID,
		At:          time.Now(),
	})
	if err != nil {
		s.Logger.Warn("failed to build booking event task", zap.String("flow", f.ID), zap.Error(err))
		return
	}
	if _, err := s.Queue.Enqueue(task, opts...); err != nil {
		s.Logger.Warn("failed to enqueue booking event", zap.String("flow", f.ID), zap.Error(err))
	}
}

// Get returns the flow projection for its owner.
func (s *DefaultFlowService) Get(_ context.Context, actor models.Actor, flowID string) (*models.Flow, error) {
	return s.loadOwned(actor, flowID)
}

// ListByUser returns the caller's recent flows.
func (s *DefaultFlowService) ListByUser(_ context.Context, actor models.Actor) ([]models.Flow, error) {
	return s.Flows.GetByUser(actor.UserID, 50)
}
