package flow

import (
	"context"
	"fmt"

	"staybridge/models"
	"staybridge/supplier/mappers"

	"go.uber.org/zap"
)

// Save creates the supplier-side itinerary placeholder and stores the
// identifiers every later step requires.
func (s *DefaultFlowService) Save(ctx context.Context, actor models.Actor, flowID string, input models.SaveBookingInput, idemKey string) (*models.Flow, error) {
	f, err := s.loadOwned(actor, flowID)
	if err != nil {
		return nil, err
	}
	if replayed, err := s.replay(flowID, models.StepSave, idemKey); replayed != nil || err != nil {
		return replayed, err
	}
	if err := requireStatus(f, "save", models.FlowBlocked); err != nil {
		return nil, err
	}

	if len(input.Rooms) > 0 && len(input.Rooms) != len(f.SearchContext.Rooms) {
		return nil, &mappers.ValidationError{
			Field:   "rooms",
			Message: fmt.Sprintf("got %d room passenger lists, the search requested %d rooms", len(input.Rooms), len(f.SearchContext.Rooms)),
		}
	}

	rooms := distributePassengers(f.SearchContext.Rooms, input)
	payload, err := mappers.BuildSaveBooking(f.SearchContext, *f.SelectedOffer, f.AllocationCurrent, input.Contact, rooms, input.Remarks)
	if err != nil {
		return nil, err
	}

	entry := newStep(f, models.StepSave, idemKey)
	res, err := s.sendWithRetry(ctx, mappers.CommandSaveBooking, payload)
	applyResult(entry, mappers.CommandSaveBooking, res)
	if err != nil {
		applyError(entry, err)
		s.record(entry)
		return nil, classify(err)
	}

	saved, err := mappers.MapSaveBooking(res.Root)
	if err != nil {
		applyError(entry, err)
		s.record(entry)
		return nil, classify(err)
	}

	prev := f.Status
	f.ItineraryBookingCode = saved.ItineraryBookingCode
	f.ServiceReferenceNumber = saved.ServiceReferenceNumber
	f.Status = models.FlowSaved
	if err := s.persistTransition(f, prev); err != nil {
		return nil, err
	}

	entry.Success = true
	entry.AllocationOut = f.AllocationCurrent
	entry.ItineraryBookingCode = saved.ItineraryBookingCode
	entry.ServiceReferenceNumber = saved.ServiceReferenceNumber
	entry.FlowStatus = f.Status
	s.record(entry)

	s.Logger.Info("itinerary saved",
		zap.String("flow", f.ID),
		zap.String("bookingCode", saved.ItineraryBookingCode))
	return f, nil
}

// distributePassengers produces one passenger list per requested room.
// Explicit per-room lists are honored; otherwise the flat list is sliced
// across rooms by required adult/children count, with synthetic placeholder
// names for shortfalls. At least one passenger per room is forced to
// leading.
func distributePassengers(rooms []models.RoomRequest, input models.SaveBookingInput) [][]models.Passenger {
	out := make([][]models.Passenger, len(rooms))

	if len(input.Rooms) == len(rooms) && len(rooms) > 0 {
		for i, rp := range input.Rooms {
			out[i] = forceLeading(rp.Passengers)
		}
		return out
	}

	var adults, children []models.Passenger
	for _, p := range input.Passengers {
		if p.Child {
			children = append(children, p)
		} else {
			adults = append(adults, p)
		}
	}

	placeholder := 0
	for i, room := range rooms {
		var list []models.Passenger
		for a := 0; a < room.Adults; a++ {
			if len(adults) > 0 {
				list = append(list, adults[0])
				adults = adults[1:]
				continue
			}
			placeholder++
			list = append(list, models.Passenger{
				FirstName: fmt.Sprintf("Guest %d", placeholder),
				LastName:  "TBA",
			})
		}
		for _, age := range room.ChildrenAges {
			if len(children) > 0 {
				list = append(list, children[0])
				children = children[1:]
				continue
			}
			placeholder++
			list = append(list, models.Passenger{
				FirstName: fmt.Sprintf("Guest %d", placeholder),
				LastName:  "TBA",
				Child:     true,
				Age:       age,
			})
		}
		out[i] = forceLeading(list)
	}
	return out
}

// forceLeading guarantees exactly one leading passenger per room, preferring
// the first adult.
func forceLeading(list []models.Passenger) []models.Passenger {
	for _, p := range list {
		if p.Leading {
			return list
		}
	}
	for i := range list {
		if !list[i].Child {
			list[i].Leading = true
			return list
		}
	}
	if len(list) > 0 {
		list[0].Leading = true
	}
	return list
}
