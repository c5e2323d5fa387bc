package booking

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCheckAvailabilityGridShape(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	restaurantID := mustRestaurantID(test, "rest-1")
	store.addTable(test, restaurantID, "table-a", "Table A", 2, 4)
	service := mustNewService(test, store)

	slots, err := service.CheckAvailability(context.Background(), restaurantID, mustDate(test, "2026-01-26"), mustPartySize(test, 2), 90*time.Minute)
	if err != nil {
		test.Fatalf("check availability: %v", err)
	}
	// 10:00 through 20:30 inclusive on a 30 minute grid; a 21:00 start would
	// run past the 22:00 close.
	if len(slots) != 22 {
		test.Fatalf("expected 22 slots, got %d", len(slots))
	}
	if slots[0].Label != "10:00" || slots[len(slots)-1].Label != "20:30" {
		test.Fatalf("grid endpoints wrong: %s .. %s", slots[0].Label, slots[len(slots)-1].Label)
	}
	for _, slot := range slots {
		if !slot.Available || slot.AvailableTables != 1 {
			test.Fatalf("empty day must leave every slot open: %+v", slot)
		}
	}
}

func TestCheckAvailabilityEmptyWhenNoTableFitsParty(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	restaurantID := mustRestaurantID(test, "rest-1")
	store.addTable(test, restaurantID, "table-a", "Table A", 2, 4)
	store.addTable(test, restaurantID, "table-b", "Table B", 2, 6)
	service := mustNewService(test, store)

	slots, err := service.CheckAvailability(context.Background(), restaurantID, mustDate(test, "2026-01-26"), mustPartySize(test, 20), 90*time.Minute)
	if err != nil {
		test.Fatalf("check availability: %v", err)
	}
	if len(slots) != 0 {
		test.Fatalf("a party of 20 must see no slots, got %d", len(slots))
	}
}

func TestCheckAvailabilityBufferExcludesAdjacentSlots(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	restaurantID := mustRestaurantID(test, "rest-1")
	tableA := store.addTable(test, restaurantID, "table-a", "Table A", 2, 4)
	service := mustNewService(test, store)
	date := mustDate(test, "2026-01-26")
	tableAID := tableA.TableID
	store.reservations[mustReservationID(test, "res-1")] = Reservation{
		ReservationID: mustReservationID(test, "res-1"),
		RestaurantID:  restaurantID,
		PartySize:     mustPartySize(test, 2),
		Date:          date,
		Window:        mustWindow(test, "18:00", 90*time.Minute),
		TableID:       &tableAID,
		Status:        StatusConfirmed,
	}

	slots, err := service.CheckAvailability(context.Background(), restaurantID, date, mustPartySize(test, 2), 90*time.Minute)
	if err != nil {
		test.Fatalf("check availability: %v", err)
	}
	availability := make(map[string]bool, len(slots))
	for _, slot := range slots {
		availability[slot.Label] = slot.Available
	}
	// 18:00-19:30 booked with a 15 minute buffer: a 90 minute seating starting
	// 16:30 ends 18:00 and collides through the buffer; 16:00 ends 17:30 and
	// clears it. On the tail, 19:30 sits inside the buffer and 20:00 is clear.
	for _, label := range []string{"16:30", "17:00", "17:30", "18:00", "18:30", "19:00", "19:30"} {
		if availability[label] {
			test.Fatalf("slot %s must be blocked by the booking and buffer", label)
		}
	}
	for _, label := range []string{"16:00", "20:00", "20:30"} {
		if !availability[label] {
			test.Fatalf("slot %s must stay open", label)
		}
	}
}

func TestCheckAvailabilitySecondTableKeepsSlotsOpen(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	restaurantID := mustRestaurantID(test, "rest-1")
	tableA := store.addTable(test, restaurantID, "table-a", "Table A", 2, 4)
	store.addTable(test, restaurantID, "table-b", "Table B", 2, 4)
	service := mustNewService(test, store)
	date := mustDate(test, "2026-01-26")
	tableAID := tableA.TableID
	store.reservations[mustReservationID(test, "res-1")] = Reservation{
		ReservationID: mustReservationID(test, "res-1"),
		RestaurantID:  restaurantID,
		PartySize:     mustPartySize(test, 2),
		Date:          date,
		Window:        mustWindow(test, "18:00", 90*time.Minute),
		TableID:       &tableAID,
		Status:        StatusConfirmed,
	}

	slots, err := service.CheckAvailability(context.Background(), restaurantID, date, mustPartySize(test, 2), 90*time.Minute)
	if err != nil {
		test.Fatalf("check availability: %v", err)
	}
	for _, slot := range slots {
		if !slot.Available {
			test.Fatalf("slot %s must stay open on the free table", slot.Label)
		}
		if slot.Label == "18:00" && slot.AvailableTables != 1 {
			test.Fatalf("the booked window must show a single surviving table, got %d", slot.AvailableTables)
		}
	}
}

func TestCheckAvailabilityValidation(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	restaurantID := mustRestaurantID(test, "rest-1")
	service := mustNewService(test, store)

	if _, err := service.CheckAvailability(context.Background(), RestaurantID{}, mustDate(test, "2026-01-26"), mustPartySize(test, 2), 0); !errors.Is(err, ErrBadRequest) {
		test.Fatalf("missing restaurant must be rejected, got %v", err)
	}
	if _, err := service.CheckAvailability(context.Background(), restaurantID, CalendarDate{}, mustPartySize(test, 2), 0); !errors.Is(err, ErrBadRequest) {
		test.Fatalf("missing date must be rejected, got %v", err)
	}
}
