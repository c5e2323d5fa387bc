package booking

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RestaurantID scopes every operation to one tenant restaurant.
type RestaurantID struct {
	value string
}

// ReservationID identifies a reservation.
type ReservationID struct {
	value string
}

// TableID identifies a floor-plan table.
type TableID struct {
	value string
}

// GuestID links a reservation to a stored guest profile.
type GuestID struct {
	value string
}

// ConfirmationCode is the short public identifier guests use to look up a
// reservation without authenticating.
type ConfirmationCode struct {
	value string
}

// PartySize is the number of guests seated by a reservation.
type PartySize int

// NewRestaurantID validates and normalizes a restaurant id.
func NewRestaurantID(raw string) (RestaurantID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return RestaurantID{}, fmt.Errorf("%w: empty value", ErrInvalidRestaurantID)
	}
	return RestaurantID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id RestaurantID) String() string {
	return id.value
}

// IsZero reports whether no restaurant context is present.
func (id RestaurantID) IsZero() bool {
	return id.value == ""
}

// NewReservationID validates and normalizes a reservation id.
func NewReservationID(raw string) (ReservationID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ReservationID{}, fmt.Errorf("%w: empty value", ErrInvalidReservationID)
	}
	return ReservationID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id ReservationID) String() string {
	return id.value
}

// NewTableID validates and normalizes a table id.
func NewTableID(raw string) (TableID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return TableID{}, fmt.Errorf("%w: empty value", ErrInvalidTableID)
	}
	return TableID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id TableID) String() string {
	return id.value
}

// NewGuestID validates and normalizes a guest profile id.
func NewGuestID(raw string) (GuestID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return GuestID{}, fmt.Errorf("%w: empty value", ErrInvalidGuestID)
	}
	return GuestID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id GuestID) String() string {
	return id.value
}

// NewConfirmationCode validates a confirmation code: fixed length, uppercase
// alphanumeric.
func NewConfirmationCode(raw string) (ConfirmationCode, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) != confirmationCodeLength {
		return ConfirmationCode{}, fmt.Errorf("%w: must be %d characters", ErrInvalidConfirmationCode, confirmationCodeLength)
	}
	for _, char := range trimmed {
		if !strings.ContainsRune(confirmationCodeAlphabet, char) {
			return ConfirmationCode{}, fmt.Errorf("%w: must be uppercase alphanumeric", ErrInvalidConfirmationCode)
		}
	}
	return ConfirmationCode{value: trimmed}, nil
}

// String returns the code.
func (code ConfirmationCode) String() string {
	return code.value
}

// NewPartySize validates a party size and ensures it is at least one guest.
func NewPartySize(raw int) (PartySize, error) {
	if raw < 1 {
		return 0, fmt.Errorf("%w: must be at least 1", ErrInvalidPartySize)
	}
	return PartySize(raw), nil
}

// Int returns the party size as a plain int.
func (size PartySize) Int() int {
	return int(size)
}

// ReservationStatus defines the reservation lifecycle.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusWaitlist  ReservationStatus = "waitlist"
	StatusSeated    ReservationStatus = "seated"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusNoShow    ReservationStatus = "no_show"
	StatusReminded  ReservationStatus = "reminded"
)

// ParseReservationStatus validates a raw status string.
func ParseReservationStatus(raw string) (ReservationStatus, error) {
	status := ReservationStatus(strings.TrimSpace(raw))
	switch status {
	case StatusPending, StatusConfirmed, StatusWaitlist, StatusSeated,
		StatusCompleted, StatusCancelled, StatusNoShow, StatusReminded:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReservationStatus, raw)
}

// String returns the status value.
func (status ReservationStatus) String() string {
	return string(status)
}

// Terminal reports whether the status accepts no further transitions.
func (status ReservationStatus) Terminal() bool {
	switch status {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// Active reports whether the reservation still occupies its table. Cancelled,
// no-show, and completed reservations free the table.
func (status ReservationStatus) Active() bool {
	switch status {
	case StatusCancelled, StatusNoShow, StatusCompleted:
		return false
	}
	return true
}

// ActiveStatuses lists the statuses that block a table.
func ActiveStatuses() []ReservationStatus {
	return []ReservationStatus{StatusPending, StatusConfirmed, StatusWaitlist, StatusSeated, StatusReminded}
}

// ReservationSource records how the booking arrived.
type ReservationSource string

const (
	SourceWalkIn ReservationSource = "walk_in"
	SourceOnline ReservationSource = "online"
	SourcePhone  ReservationSource = "phone"
)

// ParseReservationSource validates a raw source string.
func ParseReservationSource(raw string) (ReservationSource, error) {
	source := ReservationSource(strings.TrimSpace(raw))
	switch source {
	case SourceWalkIn, SourceOnline, SourcePhone:
		return source, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReservationSource, raw)
}

// String returns the source value.
func (source ReservationSource) String() string {
	return string(source)
}

// HistoryAction enumerates audit log entry kinds.
type HistoryAction string

const (
	HistoryCreated       HistoryAction = "created"
	HistoryUpdated       HistoryAction = "updated"
	HistoryStatusChanged HistoryAction = "status_changed"
	HistoryRescheduled   HistoryAction = "rescheduled"
	HistoryTableChanged  HistoryAction = "table_changed"
)

// ParseHistoryAction validates a raw action string.
func ParseHistoryAction(raw string) (HistoryAction, error) {
	action := HistoryAction(strings.TrimSpace(raw))
	switch action {
	case HistoryCreated, HistoryUpdated, HistoryStatusChanged, HistoryRescheduled, HistoryTableChanged:
		return action, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidHistoryAction, raw)
}

// String returns the action value.
func (action HistoryAction) String() string {
	return string(action)
}

// Actor identifies who initiated an operation. A zero Actor is an anonymous
// guest; reservations they create start as pending.
type Actor struct {
	ID    string
	Staff bool
}

// String returns the actor id or "guest" for anonymous actors.
func (actor Actor) String() string {
	if actor.ID == "" {
		return "guest"
	}
	return actor.ID
}

// Table is a floor-plan table. Tables are managed externally and read-only to
// the scheduler.
type Table struct {
	TableID      TableID
	RestaurantID RestaurantID
	Name         string
	Section      string
	MinCapacity  int
	MaxCapacity  int
	Active       bool
}

// Fits reports whether the table can seat the party.
func (table Table) Fits(size PartySize) bool {
	return table.Active && table.MinCapacity <= size.Int() && size.Int() <= table.MaxCapacity
}

// Reservation is a time-bound claim on a table (or on the unassigned bucket
// when TableID is nil). Transition timestamps use unix UTC seconds with zero
// meaning unset.
type Reservation struct {
	ReservationID    ReservationID
	RestaurantID     RestaurantID
	GuestName        string
	GuestEmail       string
	GuestPhone       string
	GuestID          *GuestID
	PartySize        PartySize
	Date             CalendarDate
	Window           TimeWindow
	TableID          *TableID
	Status           ReservationStatus
	ConfirmationCode ConfirmationCode
	Source           ReservationSource
	ConfirmedUnixUTC int64
	ConfirmedBy      string
	SeatedUnixUTC    int64
	CompletedUnixUTC int64
	CancelledUnixUTC int64
	NoShowUnixUTC    int64
	CancelReason     string
	Archived         bool
	CreatedUnixUTC   int64
	UpdatedUnixUTC   int64
}

// HistoryRecord is one append-only audit log line. Previous and new values are
// JSON snapshots; they are never mutated after the append.
type HistoryRecord struct {
	RestaurantID    RestaurantID
	ReservationID   ReservationID
	Action          HistoryAction
	PreviousValue   string
	NewValue        string
	Actor           string
	Note            string
	RecordedUnixUTC int64
}

// TimeSlot is one bookable grid position for an availability query. Computed
// per request, never persisted.
type TimeSlot struct {
	Label           string
	Window          TimeWindow
	Available       bool
	AvailableTables int
	TableIDs        []TableID
}

// ReservationFilter narrows list and count queries.
type ReservationFilter struct {
	Date                 *CalendarDate
	DateFrom             *CalendarDate
	DateTo               *CalendarDate
	TableID              *TableID
	Statuses             []ReservationStatus
	ExcludeReservationID *ReservationID
	IncludeArchived      bool
}

// CreateReservationRequest carries the inputs for Service.Create. Duration
// zero means the schedule's default dining duration.
type CreateReservationRequest struct {
	GuestName  string
	GuestEmail string
	GuestPhone string
	GuestID    *GuestID
	PartySize  PartySize
	Date       CalendarDate
	StartTime  ClockTime
	Duration   time.Duration
	TableID    *TableID
	Source     ReservationSource
	Note       string
}

// ReservationPatch describes a partial update; nil fields are left untouched.
type ReservationPatch struct {
	GuestName  *string
	GuestEmail *string
	GuestPhone *string
	PartySize  *PartySize
	Date       *CalendarDate
	StartTime  *ClockTime
	Duration   *time.Duration
}

// Store is the persistence contract used by Service. Implementations must
// serialize concurrent check-then-write sequences on the same table; see
// LockTable.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error
	GetTable(ctx context.Context, restaurantID RestaurantID, tableID TableID) (Table, error)
	ListTables(ctx context.Context, restaurantID RestaurantID) ([]Table, error)
	ListActiveTables(ctx context.Context, restaurantID RestaurantID, partySize PartySize) ([]Table, error)
	// LockTable acquires per-table mutual exclusion for the rest of the
	// enclosing transaction so an overlap check and the subsequent write
	// cannot interleave with a concurrent writer on the same table.
	LockTable(ctx context.Context, restaurantID RestaurantID, tableID TableID) error
	GetReservation(ctx context.Context, restaurantID RestaurantID, reservationID ReservationID) (Reservation, error)
	GetReservationByCode(ctx context.Context, restaurantID RestaurantID, code ConfirmationCode) (Reservation, error)
	ListReservations(ctx context.Context, restaurantID RestaurantID, filter ReservationFilter) ([]Reservation, error)
	CountReservations(ctx context.Context, restaurantID RestaurantID, filter ReservationFilter) (int64, error)
	CreateReservation(ctx context.Context, reservation Reservation) error
	UpdateReservation(ctx context.Context, reservation Reservation) error
	DeleteReservation(ctx context.Context, restaurantID RestaurantID, reservationID ReservationID) error
	AppendHistory(ctx context.Context, record HistoryRecord) error
	ListHistory(ctx context.Context, restaurantID RestaurantID, reservationID ReservationID) ([]HistoryRecord, error)
	IncrementGuestVisit(ctx context.Context, restaurantID RestaurantID, guestID GuestID) error
}
