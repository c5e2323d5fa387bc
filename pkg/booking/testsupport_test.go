package booking

import (
	"context"
	"fmt"
	"testing"
	"time"
)

const fixedNowUnixUTC int64 = 1_760_000_000

// stubStore is an in-memory Store for service tests. WithTx runs the closure
// against the same store; transactional rollback is a gormstore concern.
type stubStore struct {
	tables       map[TableID]Table
	reservations map[ReservationID]Reservation
	history      []HistoryRecord
	guestVisits  map[GuestID]int
	lockedTables []TableID

	listErr  error
	visitErr error
}

func newStubStore(test *testing.T) *stubStore {
	test.Helper()
	return &stubStore{
		tables:       make(map[TableID]Table),
		reservations: make(map[ReservationID]Reservation),
		guestVisits:  make(map[GuestID]int),
	}
}

func (store *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error {
	return fn(ctx, store)
}

func (store *stubStore) GetTable(ctx context.Context, restaurantID RestaurantID, tableID TableID) (Table, error) {
	table, ok := store.tables[tableID]
	if !ok || table.RestaurantID != restaurantID {
		return Table{}, fmt.Errorf("%w: table %s", ErrNotFound, tableID)
	}
	return table, nil
}

func (store *stubStore) ListTables(ctx context.Context, restaurantID RestaurantID) ([]Table, error) {
	tables := make([]Table, 0, len(store.tables))
	for _, table := range store.tables {
		if table.RestaurantID == restaurantID {
			tables = append(tables, table)
		}
	}
	sortTablesSnugFirst(tables)
	return tables, nil
}

func (store *stubStore) ListActiveTables(ctx context.Context, restaurantID RestaurantID, partySize PartySize) ([]Table, error) {
	tables := make([]Table, 0, len(store.tables))
	for _, table := range store.tables {
		if table.RestaurantID == restaurantID && table.Fits(partySize) {
			tables = append(tables, table)
		}
	}
	sortTablesSnugFirst(tables)
	return tables, nil
}

func (store *stubStore) LockTable(ctx context.Context, restaurantID RestaurantID, tableID TableID) error {
	store.lockedTables = append(store.lockedTables, tableID)
	return nil
}

func (store *stubStore) GetReservation(ctx context.Context, restaurantID RestaurantID, reservationID ReservationID) (Reservation, error) {
	reservation, ok := store.reservations[reservationID]
	if !ok || reservation.RestaurantID != restaurantID {
		return Reservation{}, fmt.Errorf("%w: reservation %s", ErrNotFound, reservationID)
	}
	return reservation, nil
}

func (store *stubStore) GetReservationByCode(ctx context.Context, restaurantID RestaurantID, code ConfirmationCode) (Reservation, error) {
	for _, reservation := range store.reservations {
		if reservation.RestaurantID == restaurantID && reservation.ConfirmationCode == code {
			return reservation, nil
		}
	}
	return Reservation{}, fmt.Errorf("%w: confirmation code %s", ErrNotFound, code)
}

func (store *stubStore) ListReservations(ctx context.Context, restaurantID RestaurantID, filter ReservationFilter) ([]Reservation, error) {
	if store.listErr != nil {
		return nil, store.listErr
	}
	matches := make([]Reservation, 0, len(store.reservations))
	for _, reservation := range store.reservations {
		if reservation.RestaurantID != restaurantID {
			continue
		}
		if matchesFilter(reservation, filter) {
			matches = append(matches, reservation)
		}
	}
	return matches, nil
}

func (store *stubStore) CountReservations(ctx context.Context, restaurantID RestaurantID, filter ReservationFilter) (int64, error) {
	matches, err := store.ListReservations(ctx, restaurantID, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(matches)), nil
}

func (store *stubStore) CreateReservation(ctx context.Context, reservation Reservation) error {
	if _, exists := store.reservations[reservation.ReservationID]; exists {
		return fmt.Errorf("%w: reservation %s exists", ErrConflict, reservation.ReservationID)
	}
	store.reservations[reservation.ReservationID] = reservation
	return nil
}

func (store *stubStore) UpdateReservation(ctx context.Context, reservation Reservation) error {
	if _, exists := store.reservations[reservation.ReservationID]; !exists {
		return fmt.Errorf("%w: reservation %s", ErrNotFound, reservation.ReservationID)
	}
	store.reservations[reservation.ReservationID] = reservation
	return nil
}

func (store *stubStore) DeleteReservation(ctx context.Context, restaurantID RestaurantID, reservationID ReservationID) error {
	if _, exists := store.reservations[reservationID]; !exists {
		return fmt.Errorf("%w: reservation %s", ErrNotFound, reservationID)
	}
	delete(store.reservations, reservationID)
	return nil
}

func (store *stubStore) AppendHistory(ctx context.Context, record HistoryRecord) error {
	store.history = append(store.history, record)
	return nil
}

func (store *stubStore) ListHistory(ctx context.Context, restaurantID RestaurantID, reservationID ReservationID) ([]HistoryRecord, error) {
	records := make([]HistoryRecord, 0, len(store.history))
	for _, record := range store.history {
		if record.RestaurantID == restaurantID && record.ReservationID == reservationID {
			records = append(records, record)
		}
	}
	return records, nil
}

func (store *stubStore) IncrementGuestVisit(ctx context.Context, restaurantID RestaurantID, guestID GuestID) error {
	if store.visitErr != nil {
		return store.visitErr
	}
	store.guestVisits[guestID]++
	return nil
}

func matchesFilter(reservation Reservation, filter ReservationFilter) bool {
	if filter.Date != nil && !reservation.Date.Equal(*filter.Date) {
		return false
	}
	if filter.DateFrom != nil && reservation.Date.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && filter.DateTo.Before(reservation.Date) {
		return false
	}
	if filter.TableID != nil {
		if reservation.TableID == nil || *reservation.TableID != *filter.TableID {
			return false
		}
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if reservation.Status == status {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.ExcludeReservationID != nil && reservation.ReservationID == *filter.ExcludeReservationID {
		return false
	}
	if !filter.IncludeArchived && reservation.Archived {
		return false
	}
	return true
}

func (store *stubStore) mustReservation(test *testing.T, reservationID ReservationID) Reservation {
	test.Helper()
	reservation, ok := store.reservations[reservationID]
	if !ok {
		test.Fatalf("reservation %s not found", reservationID.String())
	}
	return reservation
}

func (store *stubStore) addTable(test *testing.T, restaurantID RestaurantID, id string, name string, minCapacity int, maxCapacity int) Table {
	test.Helper()
	table := Table{
		TableID:      mustTableID(test, id),
		RestaurantID: restaurantID,
		Name:         name,
		Section:      "main",
		MinCapacity:  minCapacity,
		MaxCapacity:  maxCapacity,
		Active:       true,
	}
	store.tables[table.TableID] = table
	return table
}

func mustNewService(test *testing.T, store Store, options ...ServiceOption) *Service {
	test.Helper()
	service, err := NewService(store, func() int64 { return fixedNowUnixUTC }, options...)
	if err != nil {
		test.Fatalf("new service: %v", err)
	}
	return service
}

func mustRestaurantID(test *testing.T, raw string) RestaurantID {
	test.Helper()
	value, err := NewRestaurantID(raw)
	if err != nil {
		test.Fatalf("restaurant id: %v", err)
	}
	return value
}

func mustReservationID(test *testing.T, raw string) ReservationID {
	test.Helper()
	value, err := NewReservationID(raw)
	if err != nil {
		test.Fatalf("reservation id: %v", err)
	}
	return value
}

func mustTableID(test *testing.T, raw string) TableID {
	test.Helper()
	value, err := NewTableID(raw)
	if err != nil {
		test.Fatalf("table id: %v", err)
	}
	return value
}

func mustGuestID(test *testing.T, raw string) GuestID {
	test.Helper()
	value, err := NewGuestID(raw)
	if err != nil {
		test.Fatalf("guest id: %v", err)
	}
	return value
}

func mustPartySize(test *testing.T, raw int) PartySize {
	test.Helper()
	value, err := NewPartySize(raw)
	if err != nil {
		test.Fatalf("party size: %v", err)
	}
	return value
}

func mustDate(test *testing.T, raw string) CalendarDate {
	test.Helper()
	value, err := ParseCalendarDate(raw)
	if err != nil {
		test.Fatalf("calendar date: %v", err)
	}
	return value
}

func mustClock(test *testing.T, raw string) ClockTime {
	test.Helper()
	value, err := ParseClockTime(raw)
	if err != nil {
		test.Fatalf("clock time: %v", err)
	}
	return value
}

func mustWindow(test *testing.T, start string, duration time.Duration) TimeWindow {
	test.Helper()
	window, err := NewTimeWindow(mustClock(test, start), duration)
	if err != nil {
		test.Fatalf("time window: %v", err)
	}
	return window
}

func mustCode(test *testing.T, raw string) ConfirmationCode {
	test.Helper()
	value, err := NewConfirmationCode(raw)
	if err != nil {
		test.Fatalf("confirmation code: %v", err)
	}
	return value
}

func staffActor(id string) Actor {
	return Actor{ID: id, Staff: true}
}
