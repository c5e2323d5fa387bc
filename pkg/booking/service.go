package booking

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Service contains the scheduling logic over a Store.
type Service struct {
	store    Store
	schedule ScheduleConfig
	nowFn    func() int64
	codeFn   func() ConfirmationCode
	idFn     func() ReservationID
	logger   OperationLogger
}

// NewService wires a Service.
func NewService(store Store, now func() int64, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &Service{
		store:    store,
		nowFn:    now,
		schedule: DefaultScheduleConfig(),
		codeFn:   GenerateConfirmationCode,
		idFn:     newRandomReservationID,
	}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	if err := service.schedule.Validate(); err != nil {
		return nil, err
	}
	return service, nil
}

// Create books a reservation. With an explicit table the proposed window is
// conflict-checked against that table; without one the allocator picks the
// snuggest free table, and finding none leaves the reservation unassigned for
// manual seating. Staff-created reservations start confirmed, guest-created
// ones pending.
func (service *Service) Create(requestContext context.Context, restaurantID RestaurantID, request CreateReservationRequest, actor Actor) (Reservation, error) {
	var created Reservation
	operationError := service.store.WithTx(requestContext, func(ctx context.Context, transactionStore Store) error {
		if restaurantID.IsZero() {
			return fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
		}
		if request.PartySize.Int() < 1 {
			return fmt.Errorf("%w: party size must be at least 1", ErrBadRequest)
		}
		if request.Date.IsZero() {
			return fmt.Errorf("%w: reservation date is required", ErrBadRequest)
		}
		window, err := NewTimeWindow(request.StartTime, service.schedule.durationOrDefault(request.Duration))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		nowUnixUTC := service.nowFn()
		reservation := Reservation{
			ReservationID:    service.idFn(),
			RestaurantID:     restaurantID,
			GuestName:        request.GuestName,
			GuestEmail:       request.GuestEmail,
			GuestPhone:       request.GuestPhone,
			GuestID:          request.GuestID,
			PartySize:        request.PartySize,
			Date:             request.Date,
			Window:           window,
			Status:           StatusPending,
			ConfirmationCode: service.codeFn(),
			Source:           sourceOrDefault(request.Source, actor),
			CreatedUnixUTC:   nowUnixUTC,
			UpdatedUnixUTC:   nowUnixUTC,
		}
		if actor.Staff {
			reservation.Status = StatusConfirmed
			reservation.ConfirmedUnixUTC = nowUnixUTC
			reservation.ConfirmedBy = actor.String()
		}
		if request.TableID != nil {
			table, err := transactionStore.GetTable(ctx, restaurantID, *request.TableID)
			if err != nil {
				return err
			}
			if err := transactionStore.LockTable(ctx, restaurantID, table.TableID); err != nil {
				return err
			}
			if err := service.checkTableConflicts(ctx, transactionStore, restaurantID, table, request.Date, window, nil); err != nil {
				return err
			}
			tableID := table.TableID
			reservation.TableID = &tableID
		} else {
			table, err := service.findAvailableTable(ctx, transactionStore, restaurantID, request.Date, window, request.PartySize, true)
			if err != nil {
				return err
			}
			if table != nil {
				tableID := table.TableID
				reservation.TableID = &tableID
			}
		}
		if err := transactionStore.CreateReservation(ctx, reservation); err != nil {
			return err
		}
		if err := transactionStore.AppendHistory(ctx, HistoryRecord{
			RestaurantID:    restaurantID,
			ReservationID:   reservation.ReservationID,
			Action:          HistoryCreated,
			NewValue:        snapshotReservation(reservation),
			Actor:           actor.String(),
			Note:            request.Note,
			RecordedUnixUTC: nowUnixUTC,
		}); err != nil {
			return err
		}
		created = reservation
		return nil
	})
	service.logOperation(requestContext, OperationLog{
		Operation:     operationCreate,
		RestaurantID:  restaurantID,
		ReservationID: created.ReservationID,
		TableID:       tableIDString(created.TableID),
		Actor:         actor.String(),
		Error:         operationError,
	})
	if operationError != nil {
		return Reservation{}, operationError
	}
	if request.GuestID != nil {
		// Fire-and-forget: a missed visit increment is a data-quality gap,
		// not a reason to fail a booked reservation.
		if visitError := service.store.IncrementGuestVisit(requestContext, restaurantID, *request.GuestID); visitError != nil {
			service.logOperation(requestContext, OperationLog{
				Operation:     operationCreate,
				RestaurantID:  restaurantID,
				ReservationID: created.ReservationID,
				Actor:         actor.String(),
				Status:        "guest_visit_skipped",
				Error:         visitError,
			})
		}
	}
	return created, nil
}

// Update applies a partial edit. When the date or window changes, the new
// window is conflict-checked on the assigned table before anything is
// written, excluding the reservation itself.
func (service *Service) Update(requestContext context.Context, restaurantID RestaurantID, reservationID ReservationID, patch ReservationPatch, actor Actor) (Reservation, error) {
	var updated Reservation
	operationError := service.store.WithTx(requestContext, func(ctx context.Context, transactionStore Store) error {
		if restaurantID.IsZero() {
			return fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
		}
		reservation, err := transactionStore.GetReservation(ctx, restaurantID, reservationID)
		if err != nil {
			return err
		}
		previousValue := snapshotReservation(reservation)
		if patch.GuestName != nil {
			reservation.GuestName = *patch.GuestName
		}
		if patch.GuestEmail != nil {
			reservation.GuestEmail = *patch.GuestEmail
		}
		if patch.GuestPhone != nil {
			reservation.GuestPhone = *patch.GuestPhone
		}
		if patch.PartySize != nil {
			if patch.PartySize.Int() < 1 {
				return fmt.Errorf("%w: party size must be at least 1", ErrBadRequest)
			}
			reservation.PartySize = *patch.PartySize
		}
		date := reservation.Date
		startTime := reservation.Window.Start()
		duration := reservation.Window.Duration()
		timeChanged := false
		if patch.Date != nil {
			date = *patch.Date
			timeChanged = true
		}
		if patch.StartTime != nil {
			startTime = *patch.StartTime
			timeChanged = true
		}
		if patch.Duration != nil {
			duration = *patch.Duration
			timeChanged = true
		}
		if timeChanged {
			window, err := NewTimeWindow(startTime, duration)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrBadRequest, err)
			}
			if reservation.TableID != nil {
				table, err := transactionStore.GetTable(ctx, restaurantID, *reservation.TableID)
				if err != nil {
					return err
				}
				if err := transactionStore.LockTable(ctx, restaurantID, table.TableID); err != nil {
					return err
				}
				if err := service.checkTableConflicts(ctx, transactionStore, restaurantID, table, date, window, &reservation.ReservationID); err != nil {
					return err
				}
			}
			reservation.Date = date
			reservation.Window = window
		}
		reservation.UpdatedUnixUTC = service.nowFn()
		if err := transactionStore.UpdateReservation(ctx, reservation); err != nil {
			return err
		}
		if err := transactionStore.AppendHistory(ctx, HistoryRecord{
			RestaurantID:    restaurantID,
			ReservationID:   reservation.ReservationID,
			Action:          HistoryUpdated,
			PreviousValue:   previousValue,
			NewValue:        snapshotReservation(reservation),
			Actor:           actor.String(),
			RecordedUnixUTC: reservation.UpdatedUnixUTC,
		}); err != nil {
			return err
		}
		updated = reservation
		return nil
	})
	service.logOperation(requestContext, OperationLog{
		Operation:     operationUpdate,
		RestaurantID:  restaurantID,
		ReservationID: reservationID,
		Actor:         actor.String(),
		Error:         operationError,
	})
	if operationError != nil {
		return Reservation{}, operationError
	}
	return updated, nil
}

// ChangeStatus drives the reservation through the lifecycle table. Reason is
// recorded for cancellations.
func (service *Service) ChangeStatus(requestContext context.Context, restaurantID RestaurantID, reservationID ReservationID, newStatus ReservationStatus, reason string, actor Actor) (Reservation, error) {
	var updated Reservation
	operationError := service.store.WithTx(requestContext, func(ctx context.Context, transactionStore Store) error {
		if restaurantID.IsZero() {
			return fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
		}
		reservation, err := transactionStore.GetReservation(ctx, restaurantID, reservationID)
		if err != nil {
			return err
		}
		previousStatus := reservation.Status
		if err := applyTransition(&reservation, newStatus, reason, actor, service.nowFn()); err != nil {
			return err
		}
		if err := transactionStore.UpdateReservation(ctx, reservation); err != nil {
			return err
		}
		if err := transactionStore.AppendHistory(ctx, HistoryRecord{
			RestaurantID:    restaurantID,
			ReservationID:   reservation.ReservationID,
			Action:          HistoryStatusChanged,
			PreviousValue:   snapshotStatus(previousStatus),
			NewValue:        snapshotStatus(reservation.Status),
			Actor:           actor.String(),
			Note:            reason,
			RecordedUnixUTC: reservation.UpdatedUnixUTC,
		}); err != nil {
			return err
		}
		updated = reservation
		return nil
	})
	service.logOperation(requestContext, OperationLog{
		Operation:     operationChangeStatus,
		RestaurantID:  restaurantID,
		ReservationID: reservationID,
		Actor:         actor.String(),
		Status:        newStatus.String(),
		Error:         operationError,
	})
	if operationError != nil {
		return Reservation{}, operationError
	}
	return updated, nil
}

// MarkReminded is the entry point for the external reminder job. Reminded is
// not a target in the lifecycle table on purpose, so the job cannot reach it
// through ChangeStatus; only confirmed reservations can be marked.
func (service *Service) MarkReminded(requestContext context.Context, restaurantID RestaurantID, reservationID ReservationID, actor Actor) (Reservation, error) {
	var updated Reservation
	operationError := service.store.WithTx(requestContext, func(ctx context.Context, transactionStore Store) error {
		if restaurantID.IsZero() {
			return fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
		}
		reservation, err := transactionStore.GetReservation(ctx, restaurantID, reservationID)
		if err != nil {
			return err
		}
		if reservation.Status != StatusConfirmed {
			return invalidTransitionError(reservation.Status, StatusReminded)
		}
		previousStatus := reservation.Status
		reservation.Status = StatusReminded
		reservation.UpdatedUnixUTC = service.nowFn()
		if err := transactionStore.UpdateReservation(ctx, reservation); err != nil {
			return err
		}
		if err := transactionStore.AppendHistory(ctx, HistoryRecord{
			RestaurantID:    restaurantID,
			ReservationID:   reservation.ReservationID,
			Action:          HistoryStatusChanged,
			PreviousValue:   snapshotStatus(previousStatus),
			NewValue:        snapshotStatus(reservation.Status),
			Actor:           actor.String(),
			RecordedUnixUTC: reservation.UpdatedUnixUTC,
		}); err != nil {
			return err
		}
		updated = reservation
		return nil
	})
	service.logOperation(requestContext, OperationLog{
		Operation:     operationMarkReminded,
		RestaurantID:  restaurantID,
		ReservationID: reservationID,
		Actor:         actor.String(),
		Error:         operationError,
	})
	if operationError != nil {
		return Reservation{}, operationError
	}
	return updated, nil
}

// Reschedule moves a reservation to a new date and start time, keeping its
// duration, optionally onto a different table. Availability is re-checked on
// the target table excluding the reservation itself.
func (service *Service) Reschedule(requestContext context.Context, restaurantID RestaurantID, reservationID ReservationID, newDate CalendarDate, newStartTime ClockTime, newTableID *TableID, actor Actor) (Reservation, error) {
	var updated Reservation
	operationError := service.store.WithTx(requestContext, func(ctx context.Context, transactionStore Store) error {
		if restaurantID.IsZero() {
			return fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
		}
		if newDate.IsZero() {
			return fmt.Errorf("%w: reservation date is required", ErrBadRequest)
		}
		reservation, err := transactionStore.GetReservation(ctx, restaurantID, reservationID)
		if err != nil {
			return err
		}
		previousValue := snapshotSchedule(reservation.Date, reservation.Window.Start(), reservation.TableID)
		window, err := NewTimeWindow(newStartTime, reservation.Window.Duration())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		targetTableID := reservation.TableID
		if newTableID != nil {
			targetTableID = newTableID
		}
		if targetTableID != nil {
			table, err := transactionStore.GetTable(ctx, restaurantID, *targetTableID)
			if err != nil {
				return err
			}
			if err := transactionStore.LockTable(ctx, restaurantID, table.TableID); err != nil {
				return err
			}
			if err := service.checkTableConflicts(ctx, transactionStore, restaurantID, table, newDate, window, &reservation.ReservationID); err != nil {
				return err
			}
		}
		reservation.Date = newDate
		reservation.Window = window
		reservation.TableID = targetTableID
		reservation.UpdatedUnixUTC = service.nowFn()
		if err := transactionStore.UpdateReservation(ctx, reservation); err != nil {
			return err
		}
		if err := transactionStore.AppendHistory(ctx, HistoryRecord{
			RestaurantID:    restaurantID,
			ReservationID:   reservation.ReservationID,
			Action:          HistoryRescheduled,
			PreviousValue:   previousValue,
			NewValue:        snapshotSchedule(reservation.Date, reservation.Window.Start(), reservation.TableID),
			Actor:           actor.String(),
			RecordedUnixUTC: reservation.UpdatedUnixUTC,
		}); err != nil {
			return err
		}
		updated = reservation
		return nil
	})
	service.logOperation(requestContext, OperationLog{
		Operation:     operationReschedule,
		RestaurantID:  restaurantID,
		ReservationID: reservationID,
		Actor:         actor.String(),
		Error:         operationError,
	})
	if operationError != nil {
		return Reservation{}, operationError
	}
	return updated, nil
}

// ChangeTable reseats a reservation on another table after a capacity guard
// and a conflict check excluding the reservation itself.
func (service *Service) ChangeTable(requestContext context.Context, restaurantID RestaurantID, reservationID ReservationID, newTableID TableID, actor Actor) (Reservation, error) {
	var updated Reservation
	operationError := service.store.WithTx(requestContext, func(ctx context.Context, transactionStore Store) error {
		if restaurantID.IsZero() {
			return fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
		}
		reservation, err := transactionStore.GetReservation(ctx, restaurantID, reservationID)
		if err != nil {
			return err
		}
		table, err := transactionStore.GetTable(ctx, restaurantID, newTableID)
		if err != nil {
			return err
		}
		if table.MaxCapacity < reservation.PartySize.Int() {
			return fmt.Errorf("%w: table %q seats at most %d, party is %d", ErrBadRequest, table.Name, table.MaxCapacity, reservation.PartySize.Int())
		}
		if err := transactionStore.LockTable(ctx, restaurantID, table.TableID); err != nil {
			return err
		}
		if err := service.checkTableConflicts(ctx, transactionStore, restaurantID, table, reservation.Date, reservation.Window, &reservation.ReservationID); err != nil {
			return err
		}
		previousValue := snapshotTable(reservation.TableID)
		tableID := table.TableID
		reservation.TableID = &tableID
		reservation.UpdatedUnixUTC = service.nowFn()
		if err := transactionStore.UpdateReservation(ctx, reservation); err != nil {
			return err
		}
		if err := transactionStore.AppendHistory(ctx, HistoryRecord{
			RestaurantID:    restaurantID,
			ReservationID:   reservation.ReservationID,
			Action:          HistoryTableChanged,
			PreviousValue:   previousValue,
			NewValue:        snapshotTable(reservation.TableID),
			Actor:           actor.String(),
			RecordedUnixUTC: reservation.UpdatedUnixUTC,
		}); err != nil {
			return err
		}
		updated = reservation
		return nil
	})
	service.logOperation(requestContext, OperationLog{
		Operation:     operationChangeTable,
		RestaurantID:  restaurantID,
		ReservationID: reservationID,
		TableID:       newTableID.String(),
		Actor:         actor.String(),
		Error:         operationError,
	})
	if operationError != nil {
		return Reservation{}, operationError
	}
	return updated, nil
}

// Remove hard-deletes a reservation. History retention for removed
// reservations is an administrative policy owned outside the scheduler.
func (service *Service) Remove(requestContext context.Context, restaurantID RestaurantID, reservationID ReservationID, actor Actor) error {
	operationError := service.store.WithTx(requestContext, func(ctx context.Context, transactionStore Store) error {
		if restaurantID.IsZero() {
			return fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
		}
		if _, err := transactionStore.GetReservation(ctx, restaurantID, reservationID); err != nil {
			return err
		}
		return transactionStore.DeleteReservation(ctx, restaurantID, reservationID)
	})
	service.logOperation(requestContext, OperationLog{
		Operation:     operationRemove,
		RestaurantID:  restaurantID,
		ReservationID: reservationID,
		Actor:         actor.String(),
		Error:         operationError,
	})
	return operationError
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}

func newRandomReservationID() ReservationID {
	return ReservationID{value: uuid.NewString()}
}

func sourceOrDefault(source ReservationSource, actor Actor) ReservationSource {
	if source != "" {
		return source
	}
	if actor.Staff {
		return SourcePhone
	}
	return SourceOnline
}

func tableIDString(tableID *TableID) string {
	if tableID == nil {
		return ""
	}
	return tableID.String()
}

type reservationSnapshot struct {
	GuestName string `json:"guest_name"`
	PartySize int    `json:"party_size"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	TableID   string `json:"table_id,omitempty"`
	Status    string `json:"status"`
}

type scheduleSnapshot struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	TableID   string `json:"table_id,omitempty"`
}

type statusSnapshot struct {
	Status string `json:"status"`
}

type tableSnapshot struct {
	TableID string `json:"table_id,omitempty"`
}

func snapshotReservation(reservation Reservation) string {
	return marshalSnapshot(reservationSnapshot{
		GuestName: reservation.GuestName,
		PartySize: reservation.PartySize.Int(),
		Date:      reservation.Date.String(),
		StartTime: reservation.Window.Start().String(),
		EndTime:   reservation.Window.End().String(),
		TableID:   tableIDString(reservation.TableID),
		Status:    reservation.Status.String(),
	})
}

func snapshotSchedule(date CalendarDate, startTime ClockTime, tableID *TableID) string {
	return marshalSnapshot(scheduleSnapshot{
		Date:      date.String(),
		StartTime: startTime.String(),
		TableID:   tableIDString(tableID),
	})
}

func snapshotStatus(status ReservationStatus) string {
	return marshalSnapshot(statusSnapshot{Status: status.String()})
}

func snapshotTable(tableID *TableID) string {
	return marshalSnapshot(tableSnapshot{TableID: tableIDString(tableID)})
}

func marshalSnapshot(value any) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return "{}"
	}
	return string(raw)
}
