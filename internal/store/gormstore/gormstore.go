package gormstore

import (
	"context"
	"errors"
	"time"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MarkoPoloResearchLab/tablebook/pkg/booking"
)

const (
	constraintReservationCode = "uniq_reservations_code"
	pgUniqueViolationCode     = "23505"
	sqliteConstraintCode      = 19
	sqliteDialectorName       = "sqlite"
	errorOperationStore       = "store"
	errorSubjectTable         = "table"
	errorSubjectReservation   = "reservation"
	errorSubjectHistory       = "history"
	errorSubjectGuest         = "guest"
	errorCodeCreate           = "create"
	errorCodeDelete           = "delete"
	errorCodeDuplicate        = "duplicate"
	errorCodeGet              = "get"
	errorCodeInsert           = "insert"
	errorCodeInvalid          = "invalid"
	errorCodeList             = "list"
	errorCodeCount            = "count"
	errorCodeLock             = "lock"
	errorCodeUpdate           = "update"
	errorCodeVisit            = "visit"
)

// Store implements booking.Store using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the scheduler schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Table{}, &Reservation{}, &ReservationHistory{}, &GuestProfile{})
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore booking.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction})
	})
}

func (store *Store) GetTable(ctx context.Context, restaurantID booking.RestaurantID, tableID booking.TableID) (booking.Table, error) {
	var model Table
	err := store.db.WithContext(ctx).
		Where("restaurant_id = ? AND table_id = ?", restaurantID.String(), tableID.String()).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return booking.Table{}, wrapStoreError(errorSubjectTable, errorCodeGet, booking.ErrNotFound)
		}
		return booking.Table{}, wrapStoreError(errorSubjectTable, errorCodeGet, err)
	}
	return mapTable(model)
}

func (store *Store) ListTables(ctx context.Context, restaurantID booking.RestaurantID) ([]booking.Table, error) {
	var rows []Table
	err := store.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID.String()).
		Order("max_capacity ASC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectTable, errorCodeList, err)
	}
	return mapTables(rows)
}

func (store *Store) ListActiveTables(ctx context.Context, restaurantID booking.RestaurantID, partySize booking.PartySize) ([]booking.Table, error) {
	var rows []Table
	err := store.db.WithContext(ctx).
		Where("restaurant_id = ? AND active = ?", restaurantID.String(), true).
		Where("min_capacity <= ? AND max_capacity >= ?", partySize.Int(), partySize.Int()).
		Order("max_capacity ASC, name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectTable, errorCodeList, err)
	}
	return mapTables(rows)
}

// LockTable takes a row lock on the table for the rest of the enclosing
// transaction, serializing concurrent check-then-write sequences on the same
// table. SQLite has no FOR UPDATE and serializes writers on its own, so the
// locking clause is skipped there.
func (store *Store) LockTable(ctx context.Context, restaurantID booking.RestaurantID, tableID booking.TableID) error {
	query := store.db.WithContext(ctx)
	if store.db.Dialector.Name() != sqliteDialectorName {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var model Table
	err := query.
		Where("restaurant_id = ? AND table_id = ?", restaurantID.String(), tableID.String()).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return wrapStoreError(errorSubjectTable, errorCodeLock, booking.ErrNotFound)
		}
		return wrapStoreError(errorSubjectTable, errorCodeLock, err)
	}
	return nil
}

func (store *Store) GetReservation(ctx context.Context, restaurantID booking.RestaurantID, reservationID booking.ReservationID) (booking.Reservation, error) {
	var model Reservation
	err := store.db.WithContext(ctx).
		Where("restaurant_id = ? AND reservation_id = ?", restaurantID.String(), reservationID.String()).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, booking.ErrNotFound)
		}
		return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, err)
	}
	return mapReservation(model)
}

func (store *Store) GetReservationByCode(ctx context.Context, restaurantID booking.RestaurantID, code booking.ConfirmationCode) (booking.Reservation, error) {
	var model Reservation
	err := store.db.WithContext(ctx).
		Where("restaurant_id = ? AND confirmation_code = ?", restaurantID.String(), code.String()).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, booking.ErrNotFound)
		}
		return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeGet, err)
	}
	return mapReservation(model)
}

func (store *Store) ListReservations(ctx context.Context, restaurantID booking.RestaurantID, filter booking.ReservationFilter) ([]booking.Reservation, error) {
	var rows []Reservation
	err := store.filteredQuery(ctx, restaurantID, filter).
		Order("date ASC, start_minute ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectReservation, errorCodeList, err)
	}
	reservations := make([]booking.Reservation, 0, len(rows))
	for _, row := range rows {
		reservation, err := mapReservation(row)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	return reservations, nil
}

func (store *Store) CountReservations(ctx context.Context, restaurantID booking.RestaurantID, filter booking.ReservationFilter) (int64, error) {
	var count int64
	err := store.filteredQuery(ctx, restaurantID, filter).Count(&count).Error
	if err != nil {
		return 0, wrapStoreError(errorSubjectReservation, errorCodeCount, err)
	}
	return count, nil
}

func (store *Store) CreateReservation(ctx context.Context, reservation booking.Reservation) error {
	model := toReservationModel(reservation)
	err := store.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err, constraintReservationCode) {
		return wrapStoreError(errorSubjectReservation, errorCodeDuplicate, booking.ErrConflict)
	}
	if err != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeCreate, err)
	}
	return nil
}

func (store *Store) UpdateReservation(ctx context.Context, reservation booking.Reservation) error {
	model := toReservationModel(reservation)
	result := store.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("restaurant_id = ? AND reservation_id = ?", reservation.RestaurantID.String(), reservation.ReservationID.String()).
		Select("*").
		Omit("reservation_id", "restaurant_id", "created_at").
		Updates(&model)
	if result.Error != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectReservation, errorCodeUpdate, booking.ErrNotFound)
	}
	return nil
}

func (store *Store) DeleteReservation(ctx context.Context, restaurantID booking.RestaurantID, reservationID booking.ReservationID) error {
	result := store.db.WithContext(ctx).
		Where("restaurant_id = ? AND reservation_id = ?", restaurantID.String(), reservationID.String()).
		Delete(&Reservation{})
	if result.Error != nil {
		return wrapStoreError(errorSubjectReservation, errorCodeDelete, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectReservation, errorCodeDelete, booking.ErrNotFound)
	}
	return nil
}

func (store *Store) AppendHistory(ctx context.Context, record booking.HistoryRecord) error {
	model := ReservationHistory{
		RestaurantID:  record.RestaurantID.String(),
		ReservationID: record.ReservationID.String(),
		Action:        record.Action.String(),
		PreviousValue: datatypesJSON(record.PreviousValue),
		NewValue:      datatypesJSON(record.NewValue),
		Actor:         record.Actor,
		Note:          record.Note,
		CreatedAt:     unixTime(record.RecordedUnixUTC),
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return wrapStoreError(errorSubjectHistory, errorCodeInsert, err)
	}
	return nil
}

func (store *Store) IncrementGuestVisit(ctx context.Context, restaurantID booking.RestaurantID, guestID booking.GuestID) error {
	err := store.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "guest_id"}, {Name: "restaurant_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"visit_count": gorm.Expr("guest_profiles.visit_count + 1")}),
		}).
		Create(&GuestProfile{
			GuestID:      guestID.String(),
			RestaurantID: restaurantID.String(),
			VisitCount:   1,
		}).Error
	if err != nil {
		return wrapStoreError(errorSubjectGuest, errorCodeVisit, err)
	}
	return nil
}

// ListHistory returns the audit trail for a reservation, oldest first.
func (store *Store) ListHistory(ctx context.Context, restaurantID booking.RestaurantID, reservationID booking.ReservationID) ([]booking.HistoryRecord, error) {
	var rows []ReservationHistory
	err := store.db.WithContext(ctx).
		Where("restaurant_id = ? AND reservation_id = ?", restaurantID.String(), reservationID.String()).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectHistory, errorCodeList, err)
	}
	records := make([]booking.HistoryRecord, 0, len(rows))
	for _, row := range rows {
		record, err := mapHistoryRecord(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

func (store *Store) filteredQuery(ctx context.Context, restaurantID booking.RestaurantID, filter booking.ReservationFilter) *gorm.DB {
	query := store.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("restaurant_id = ?", restaurantID.String())
	if filter.Date != nil {
		query = query.Where("date = ?", filter.Date.String())
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", filter.DateFrom.String())
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", filter.DateTo.String())
	}
	if filter.TableID != nil {
		query = query.Where("table_id = ?", filter.TableID.String())
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			statuses = append(statuses, status.String())
		}
		query = query.Where("status IN ?", statuses)
	}
	if filter.ExcludeReservationID != nil {
		query = query.Where("reservation_id <> ?", filter.ExcludeReservationID.String())
	}
	if !filter.IncludeArchived {
		query = query.Where("archived = ?", false)
	}
	return query
}

func wrapStoreError(subject string, code string, err error) error {
	return booking.WrapError(errorOperationStore, subject, code, err)
}

func mapTable(model Table) (booking.Table, error) {
	tableID, err := booking.NewTableID(model.TableID)
	if err != nil {
		return booking.Table{}, wrapStoreError(errorSubjectTable, errorCodeInvalid, err)
	}
	restaurantID, err := booking.NewRestaurantID(model.RestaurantID)
	if err != nil {
		return booking.Table{}, wrapStoreError(errorSubjectTable, errorCodeInvalid, err)
	}
	return booking.Table{
		TableID:      tableID,
		RestaurantID: restaurantID,
		Name:         model.Name,
		Section:      model.Section,
		MinCapacity:  model.MinCapacity,
		MaxCapacity:  model.MaxCapacity,
		Active:       model.Active,
	}, nil
}

func mapTables(rows []Table) ([]booking.Table, error) {
	tables := make([]booking.Table, 0, len(rows))
	for _, row := range rows {
		table, err := mapTable(row)
		if err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}
	return tables, nil
}

func toReservationModel(reservation booking.Reservation) Reservation {
	var guestID *string
	if reservation.GuestID != nil {
		value := reservation.GuestID.String()
		guestID = &value
	}
	var tableID *string
	if reservation.TableID != nil {
		value := reservation.TableID.String()
		tableID = &value
	}
	model := Reservation{
		ReservationID:    reservation.ReservationID.String(),
		RestaurantID:     reservation.RestaurantID.String(),
		GuestName:        reservation.GuestName,
		GuestEmail:       reservation.GuestEmail,
		GuestPhone:       reservation.GuestPhone,
		GuestID:          guestID,
		PartySize:        reservation.PartySize.Int(),
		Date:             reservation.Date.String(),
		StartMinute:      reservation.Window.Start().MinuteOfDay(),
		EndMinute:        reservation.Window.End().MinuteOfDay(),
		TableID:          tableID,
		Status:           reservation.Status.String(),
		ConfirmationCode: reservation.ConfirmationCode.String(),
		Source:           reservation.Source.String(),
		ConfirmedAt:      unixTimePointer(reservation.ConfirmedUnixUTC),
		ConfirmedBy:      reservation.ConfirmedBy,
		SeatedAt:         unixTimePointer(reservation.SeatedUnixUTC),
		CompletedAt:      unixTimePointer(reservation.CompletedUnixUTC),
		CancelledAt:      unixTimePointer(reservation.CancelledUnixUTC),
		NoShowAt:         unixTimePointer(reservation.NoShowUnixUTC),
		CancelReason:     reservation.CancelReason,
		Archived:         reservation.Archived,
		CreatedAt:        unixTime(reservation.CreatedUnixUTC),
		UpdatedAt:        unixTime(reservation.UpdatedUnixUTC),
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	if model.UpdatedAt.IsZero() {
		model.UpdatedAt = model.CreatedAt
	}
	return model
}

func mapReservation(model Reservation) (booking.Reservation, error) {
	reservationID, err := booking.NewReservationID(model.ReservationID)
	if err != nil {
		return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
	}
	restaurantID, err := booking.NewRestaurantID(model.RestaurantID)
	if err != nil {
		return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
	}
	partySize, err := booking.NewPartySize(model.PartySize)
	if err != nil {
		return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
	}
	date, err := booking.ParseCalendarDate(model.Date)
	if err != nil {
		return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
	}
	window, err := booking.NewTimeWindowFromMinutes(model.StartMinute, model.EndMinute)
	if err != nil {
		return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
	}
	status, err := booking.ParseReservationStatus(model.Status)
	if err != nil {
		return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
	}
	code, err := booking.NewConfirmationCode(model.ConfirmationCode)
	if err != nil {
		return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
	}
	source, err := booking.ParseReservationSource(model.Source)
	if err != nil {
		return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
	}
	var guestID *booking.GuestID
	if model.GuestID != nil {
		parsed, err := booking.NewGuestID(*model.GuestID)
		if err != nil {
			return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
		}
		guestID = &parsed
	}
	var tableID *booking.TableID
	if model.TableID != nil {
		parsed, err := booking.NewTableID(*model.TableID)
		if err != nil {
			return booking.Reservation{}, wrapStoreError(errorSubjectReservation, errorCodeInvalid, err)
		}
		tableID = &parsed
	}
	return booking.Reservation{
		ReservationID:    reservationID,
		RestaurantID:     restaurantID,
		GuestName:        model.GuestName,
		GuestEmail:       model.GuestEmail,
		GuestPhone:       model.GuestPhone,
		GuestID:          guestID,
		PartySize:        partySize,
		Date:             date,
		Window:           window,
		TableID:          tableID,
		Status:           status,
		ConfirmationCode: code,
		Source:           source,
		ConfirmedUnixUTC: timeOrZero(model.ConfirmedAt),
		ConfirmedBy:      model.ConfirmedBy,
		SeatedUnixUTC:    timeOrZero(model.SeatedAt),
		CompletedUnixUTC: timeOrZero(model.CompletedAt),
		CancelledUnixUTC: timeOrZero(model.CancelledAt),
		NoShowUnixUTC:    timeOrZero(model.NoShowAt),
		CancelReason:     model.CancelReason,
		Archived:         model.Archived,
		CreatedUnixUTC:   model.CreatedAt.Unix(),
		UpdatedUnixUTC:   model.UpdatedAt.Unix(),
	}, nil
}

func mapHistoryRecord(model ReservationHistory) (booking.HistoryRecord, error) {
	restaurantID, err := booking.NewRestaurantID(model.RestaurantID)
	if err != nil {
		return booking.HistoryRecord{}, wrapStoreError(errorSubjectHistory, errorCodeInvalid, err)
	}
	reservationID, err := booking.NewReservationID(model.ReservationID)
	if err != nil {
		return booking.HistoryRecord{}, wrapStoreError(errorSubjectHistory, errorCodeInvalid, err)
	}
	action, err := booking.ParseHistoryAction(model.Action)
	if err != nil {
		return booking.HistoryRecord{}, wrapStoreError(errorSubjectHistory, errorCodeInvalid, err)
	}
	return booking.HistoryRecord{
		RestaurantID:    restaurantID,
		ReservationID:   reservationID,
		Action:          action,
		PreviousValue:   string(model.PreviousValue),
		NewValue:        string(model.NewValue),
		Actor:           model.Actor,
		Note:            model.Note,
		RecordedUnixUTC: model.CreatedAt.Unix(),
	}, nil
}

func unixTime(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.Unix(value, 0).UTC()
}

func unixTimePointer(value int64) *time.Time {
	if value == 0 {
		return nil
	}
	converted := time.Unix(value, 0).UTC()
	return &converted
}

func timeOrZero(value *time.Time) int64 {
	if value == nil {
		return 0
	}
	return value.Unix()
}

func datatypesJSON(raw string) datatypes.JSON {
	if raw == "" {
		return nil
	}
	return datatypes.JSON([]byte(raw))
}

func isUniqueViolation(err error, constraint string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode && pgErr.ConstraintName == constraint
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}
