package booking

// canTransition is the status lifecycle table. Terminal statuses allow
// nothing. Reminded appears only as a source: the external reminder job moves
// confirmed reservations there through MarkReminded, never through
// ChangeStatus, and the asymmetry is deliberate.
func canTransition(from ReservationStatus, to ReservationStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled || to == StatusWaitlist
	case StatusConfirmed:
		return to == StatusSeated || to == StatusCancelled || to == StatusNoShow
	case StatusWaitlist:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusSeated:
		return to == StatusCompleted
	case StatusReminded:
		return to == StatusSeated || to == StatusCancelled || to == StatusNoShow
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return false
	}
	return false
}

// applyTransition validates the status change and writes the status plus its
// side-effect timestamps onto the reservation. The caller persists the
// reservation and the status-changed history record together.
func applyTransition(reservation *Reservation, to ReservationStatus, reason string, actor Actor, nowUnixUTC int64) error {
	if !canTransition(reservation.Status, to) {
		return invalidTransitionError(reservation.Status, to)
	}
	switch to {
	case StatusConfirmed:
		reservation.ConfirmedUnixUTC = nowUnixUTC
		reservation.ConfirmedBy = actor.String()
	case StatusSeated:
		reservation.SeatedUnixUTC = nowUnixUTC
	case StatusCompleted:
		reservation.CompletedUnixUTC = nowUnixUTC
	case StatusCancelled:
		reservation.CancelledUnixUTC = nowUnixUTC
		reservation.CancelReason = reason
	case StatusNoShow:
		reservation.NoShowUnixUTC = nowUnixUTC
	}
	reservation.Status = to
	reservation.UpdatedUnixUTC = nowUnixUTC
	return nil
}
