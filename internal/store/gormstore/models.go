package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Table mirrors the tables table. Rows are owned by the floor-plan editor;
// the scheduler only reads and row-locks them.
type Table struct {
	TableID      string    `gorm:"type:uuid;primaryKey"`
	RestaurantID string    `gorm:"not null;index:idx_tables_restaurant,priority:1"`
	Name         string    `gorm:"not null"`
	Section      string    `gorm:""`
	MinCapacity  int       `gorm:"not null"`
	MaxCapacity  int       `gorm:"not null"`
	Active       bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (Table) TableName() string { return "tables" }

func (table *Table) BeforeCreate(tx *gorm.DB) error {
	if table.TableID == "" {
		table.TableID = uuid.NewString()
	}
	return nil
}

// Reservation mirrors the reservations table. Date is the restaurant-local
// calendar day as "YYYY-MM-DD"; the seating window is stored as minutes since
// midnight so overlap queries stay integer comparisons.
type Reservation struct {
	ReservationID    string     `gorm:"type:uuid;primaryKey"`
	RestaurantID     string     `gorm:"not null;index:idx_reservations_restaurant_date,priority:1;index:uniq_reservations_code,unique,priority:1"`
	GuestName        string     `gorm:"not null"`
	GuestEmail       string     `gorm:""`
	GuestPhone       string     `gorm:""`
	GuestID          *string    `gorm:"index:idx_reservations_guest"`
	PartySize        int        `gorm:"not null"`
	Date             string     `gorm:"not null;index:idx_reservations_restaurant_date,priority:2"`
	StartMinute      int        `gorm:"not null"`
	EndMinute        int        `gorm:"not null"`
	TableID          *string    `gorm:"index:idx_reservations_table"`
	Status           string     `gorm:"not null"`
	ConfirmationCode string     `gorm:"not null;index:uniq_reservations_code,unique,priority:2"`
	Source           string     `gorm:"not null"`
	ConfirmedAt      *time.Time `gorm:""`
	ConfirmedBy      string     `gorm:""`
	SeatedAt         *time.Time `gorm:""`
	CompletedAt      *time.Time `gorm:""`
	CancelledAt      *time.Time `gorm:""`
	NoShowAt         *time.Time `gorm:""`
	CancelReason     string     `gorm:""`
	Archived         bool       `gorm:"not null"`
	CreatedAt        time.Time  `gorm:"not null"`
	UpdatedAt        time.Time  `gorm:"not null"`
}

func (Reservation) TableName() string { return "reservations" }

func (reservation *Reservation) BeforeCreate(tx *gorm.DB) error {
	if reservation.ReservationID == "" {
		reservation.ReservationID = uuid.NewString()
	}
	return nil
}

// ReservationHistory mirrors the reservation_history audit table. Previous and
// new values are JSON snapshots, append-only.
type ReservationHistory struct {
	HistoryID     string         `gorm:"type:uuid;primaryKey"`
	RestaurantID  string         `gorm:"not null;index:idx_history_restaurant_reservation,priority:1"`
	ReservationID string         `gorm:"not null;index:idx_history_restaurant_reservation,priority:2"`
	Action        string         `gorm:"not null"`
	PreviousValue datatypes.JSON `gorm:"type:jsonb"`
	NewValue      datatypes.JSON `gorm:"type:jsonb"`
	Actor         string         `gorm:""`
	Note          string         `gorm:""`
	CreatedAt     time.Time      `gorm:"not null"`
}

func (ReservationHistory) TableName() string { return "reservation_history" }

func (record *ReservationHistory) BeforeCreate(tx *gorm.DB) error {
	if record.HistoryID == "" {
		record.HistoryID = uuid.NewString()
	}
	return nil
}

// GuestProfile mirrors the guest_profiles table. The scheduler only bumps the
// visit counter; profile management lives elsewhere.
type GuestProfile struct {
	GuestID      string    `gorm:"primaryKey"`
	RestaurantID string    `gorm:"primaryKey"`
	VisitCount   int       `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (GuestProfile) TableName() string { return "guest_profiles" }
