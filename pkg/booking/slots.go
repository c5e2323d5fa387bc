package booking

import (
	"context"
	"fmt"
	"time"
)

// CheckAvailability computes the day's bookable grid for a party: one slot
// per interval between open and close, dropping slots whose seating would run
// past close. Each slot lists the candidate tables that survive a buffered
// overlap check against existing active reservations. The grid is recomputed
// in full on every call; nothing is cached. When no table can seat the party
// at all, the result is empty.
func (service *Service) CheckAvailability(requestContext context.Context, restaurantID RestaurantID, date CalendarDate, partySize PartySize, duration time.Duration) ([]TimeSlot, error) {
	if restaurantID.IsZero() {
		return nil, fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrBadRequest)
	}
	if partySize.Int() < 1 {
		return nil, fmt.Errorf("%w: party size must be at least 1", ErrBadRequest)
	}
	seatingDuration := service.schedule.durationOrDefault(duration)

	candidates, err := service.store.ListActiveTables(requestContext, restaurantID, partySize)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []TimeSlot{}, nil
	}

	reservations, err := service.store.ListReservations(requestContext, restaurantID, ReservationFilter{
		Date:     &date,
		Statuses: ActiveStatuses(),
	})
	if err != nil {
		return nil, err
	}
	reservationsByTable := make(map[TableID][]Reservation)
	for _, reservation := range reservations {
		if reservation.TableID == nil {
			continue
		}
		reservationsByTable[*reservation.TableID] = append(reservationsByTable[*reservation.TableID], reservation)
	}

	intervalMinutes := int(service.schedule.SlotInterval / time.Minute)
	durationMinutes := int(seatingDuration / time.Minute)
	openMinute := service.schedule.Open.MinuteOfDay()
	closeMinute := service.schedule.Close.MinuteOfDay()

	slots := make([]TimeSlot, 0, (closeMinute-openMinute)/intervalMinutes+1)
	for startMinute := openMinute; startMinute+durationMinutes <= closeMinute; startMinute += intervalMinutes {
		window := TimeWindow{startMinute: startMinute, endMinute: startMinute + durationMinutes}
		surviving := make([]TableID, 0, len(candidates))
		for _, table := range candidates {
			if tableFreeFor(window, reservationsByTable[table.TableID], service.schedule.Buffer) {
				surviving = append(surviving, table.TableID)
			}
		}
		slots = append(slots, TimeSlot{
			Label:           window.Start().String(),
			Window:          window,
			Available:       len(surviving) > 0,
			AvailableTables: len(surviving),
			TableIDs:        surviving,
		})
	}
	return slots, nil
}

func tableFreeFor(window TimeWindow, reservations []Reservation, buffer time.Duration) bool {
	for _, reservation := range reservations {
		if Overlaps(window, reservation.Window, buffer) {
			return false
		}
	}
	return true
}
