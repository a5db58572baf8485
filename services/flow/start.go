package flow

import (
	"context"
	"time"

	"staybridge/models"
	"staybridge/supplier"
	"staybridge/supplier/mappers"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Start runs the rate search, signs one offer token per bookable
// combination and persists a new flow in STARTED. No allocation token is
// fixed yet: each candidate carries its own, and the one the caller selects
// becomes the flow's starting allocation.
func (s *DefaultFlowService) Start(ctx context.Context, actor models.Actor, sc models.SearchContext) (*StartResult, error) {
	payload, err := mappers.BuildSearch(sc)
	if err != nil {
		return nil, err
	}

	res, err := s.sendWithRetry(ctx, mappers.CommandSearch, payload)
	if err != nil {
		return nil, classify(err)
	}
	search, err := mappers.MapSearch(res.Root)
	if err != nil {
		return nil, classify(err)
	}
	if len(search.Candidates) == 0 {
		cls := supplier.Classify(supplier.CodeNoAvailability)
		return nil, &ClassifiedError{
			Kind:        cls.Kind,
			UserMessage: cls.UserMessage,
			Code:        supplier.CodeNoAvailability,
			Details:     "search returned no bookable room/rate combinations",
		}
	}

	now := time.Now()
	f := &models.Flow{
		ID:            uuid.New().String(),
		UserID:        actor.UserID,
		Status:        models.FlowStarted,
		SearchContext: sc,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Flows.Create(f); err != nil {
		return nil, err
	}

	offers := make([]models.Offer, 0, len(search.Candidates))
	expiry := time.Now().Add(s.Tokens.TTL()).Unix()
	for _, cand := range search.Candidates {
		op := models.OfferPayload{
			HotelID:       sc.HotelID,
			FromDate:      sc.FromDate,
			ToDate:        sc.ToDate,
			Currency:      cand.Currency,
			RoomTypeCode:  cand.RoomTypeCode,
			RoomTypeName:  cand.RoomTypeName,
			RateBasis:     cand.RateBasis,
			RateBasisName: cand.RateBasisName,
			Total:         cand.Total,
			MinSelling:    cand.MinSelling,
			MealsIncluded: cand.MealsIncluded,
			Refundable:    cand.Refundable,
			Cancellation:  cand.Cancellation,
			Allocation:    cand.Allocation,
			IssuedAt:      now.Unix(),
			ExpiresAt:     expiry,
		}
		token, err := s.Tokens.Sign(op)
		if err != nil {
			s.Logger.Error("failed to sign offer token", zap.String("flow", f.ID), zap.Error(err))
			continue
		}
		offers = append(offers, models.Offer{OfferPayload: op, Token: token})
	}

	entry := newStep(f, models.StepStart, "")
	applyResult(entry, mappers.CommandSearch, res)
	entry.Success = true
	entry.FlowStatus = f.Status
	s.record(entry)

	s.Logger.Info("flow started",
		zap.String("flow", f.ID),
		zap.Int("hotel", sc.HotelID),
		zap.Int("offers", len(offers)))
	return &StartResult{Flow: f, Offers: offers}, nil
}
