package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// CheckTableAvailability verifies that the proposed window (expanded by the
// schedule buffer) does not overlap any active reservation on the table.
// excludeReservationID skips the reservation being moved so it cannot
// conflict with itself.
func (service *Service) CheckTableAvailability(requestContext context.Context, restaurantID RestaurantID, tableID TableID, date CalendarDate, window TimeWindow, excludeReservationID *ReservationID) error {
	if restaurantID.IsZero() {
		return fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
	}
	table, err := service.store.GetTable(requestContext, restaurantID, tableID)
	if err != nil {
		return err
	}
	return service.checkTableConflicts(requestContext, service.store, restaurantID, table, date, window, excludeReservationID)
}

// FindAvailableTable picks the snuggest free table for the window and party:
// candidates are the active tables whose capacity range covers the party,
// ordered smallest max capacity first. A nil result with a nil error means no
// table fits or all are booked; callers treat that as "needs manual seating",
// not a failure.
func (service *Service) FindAvailableTable(requestContext context.Context, restaurantID RestaurantID, date CalendarDate, window TimeWindow, partySize PartySize) (*Table, error) {
	if restaurantID.IsZero() {
		return nil, fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
	}
	return service.findAvailableTable(requestContext, service.store, restaurantID, date, window, partySize, false)
}

func (service *Service) findAvailableTable(ctx context.Context, store Store, restaurantID RestaurantID, date CalendarDate, window TimeWindow, partySize PartySize, lock bool) (*Table, error) {
	candidates, err := store.ListActiveTables(ctx, restaurantID, partySize)
	if err != nil {
		return nil, err
	}
	sortTablesSnugFirst(candidates)
	for _, candidate := range candidates {
		if lock {
			if err := store.LockTable(ctx, restaurantID, candidate.TableID); err != nil {
				return nil, err
			}
		}
		conflictErr := service.checkTableConflicts(ctx, store, restaurantID, candidate, date, window, nil)
		if conflictErr == nil {
			table := candidate
			return &table, nil
		}
		if !errors.Is(conflictErr, ErrConflict) {
			return nil, conflictErr
		}
	}
	return nil, nil
}

// checkTableConflicts scans the table's active reservations for the date and
// fails with ErrConflict on the first buffered overlap.
func (service *Service) checkTableConflicts(ctx context.Context, store Store, restaurantID RestaurantID, table Table, date CalendarDate, window TimeWindow, excludeReservationID *ReservationID) error {
	tableID := table.TableID
	existing, err := store.ListReservations(ctx, restaurantID, ReservationFilter{
		Date:                 &date,
		TableID:              &tableID,
		Statuses:             ActiveStatuses(),
		ExcludeReservationID: excludeReservationID,
	})
	if err != nil {
		return err
	}
	for _, reservation := range existing {
		if Overlaps(window, reservation.Window, service.schedule.Buffer) {
			return fmt.Errorf("%w: table %q is already booked %s on %s", ErrConflict, table.Name, reservation.Window, date)
		}
	}
	return nil
}

// sortTablesSnugFirst orders candidates by smallest max capacity so a party
// of two lands on a two-top before a six-top; name breaks ties for stable
// allocation.
func sortTablesSnugFirst(tables []Table) {
	sort.SliceStable(tables, func(left int, right int) bool {
		if tables[left].MaxCapacity != tables[right].MaxCapacity {
			return tables[left].MaxCapacity < tables[right].MaxCapacity
		}
		return tables[left].Name < tables[right].Name
	})
}
