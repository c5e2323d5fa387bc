package booking

import (
	"context"
	"fmt"
)

// GetReservation fetches one reservation.
func (service *Service) GetReservation(requestContext context.Context, restaurantID RestaurantID, reservationID ReservationID) (Reservation, error) {
	if restaurantID.IsZero() {
		return Reservation{}, fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
	}
	return service.store.GetReservation(requestContext, restaurantID, reservationID)
}

// GetReservationByCode looks a reservation up by its public confirmation
// code, the unauthenticated guest path.
func (service *Service) GetReservationByCode(requestContext context.Context, restaurantID RestaurantID, code ConfirmationCode) (Reservation, error) {
	if restaurantID.IsZero() {
		return Reservation{}, fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
	}
	return service.store.GetReservationByCode(requestContext, restaurantID, code)
}

// ListReservations lists reservations matching the filter.
func (service *Service) ListReservations(requestContext context.Context, restaurantID RestaurantID, filter ReservationFilter) ([]Reservation, error) {
	if restaurantID.IsZero() {
		return nil, fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
	}
	return service.store.ListReservations(requestContext, restaurantID, filter)
}

// GetHistory returns a reservation's audit trail, oldest record first.
func (service *Service) GetHistory(requestContext context.Context, restaurantID RestaurantID, reservationID ReservationID) ([]HistoryRecord, error) {
	if restaurantID.IsZero() {
		return nil, fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
	}
	if _, err := service.store.GetReservation(requestContext, restaurantID, reservationID); err != nil {
		return nil, err
	}
	return service.store.ListHistory(requestContext, restaurantID, reservationID)
}

// CountReservations counts reservations matching the filter.
func (service *Service) CountReservations(requestContext context.Context, restaurantID RestaurantID, filter ReservationFilter) (int64, error) {
	if restaurantID.IsZero() {
		return 0, fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
	}
	return service.store.CountReservations(requestContext, restaurantID, filter)
}
