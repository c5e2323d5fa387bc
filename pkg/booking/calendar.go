package booking

import (
	"context"
	"fmt"
)

// peakThresholdFactor marks a day as peak when its reservation count reaches
// this multiple of the mean across the queried range.
const peakThresholdFactor = 1.3

// DaySummary aggregates one calendar day for the overview. Cancelled
// reservations are excluded everywhere; no-shows still count toward the day
// they claimed.
type DaySummary struct {
	Date         CalendarDate
	Reservations int
	Guests       int
	Confirmed    int
	Pending      int
	Waitlist     int
	Peak         bool
}

// TableSchedule groups one table's reservations for a day.
type TableSchedule struct {
	Table        Table
	Reservations []Reservation
}

// HourSummary counts reservations and guests whose windows touch one
// operating hour.
type HourSummary struct {
	Hour         int
	Label        string
	Reservations int
	Guests       int
}

// DaySchedule is the floor view for a single day: reservations per table, an
// unassigned bucket, and an hourly load profile over operating hours.
type DaySchedule struct {
	Date       CalendarDate
	Tables     []TableSchedule
	Unassigned []Reservation
	Hours      []HourSummary
}

// GetCalendarOverview summarizes each day in the inclusive range. The peak
// flag compares a day's count against the arithmetic mean over every day in
// the range, zero-count days included.
func (service *Service) GetCalendarOverview(requestContext context.Context, restaurantID RestaurantID, startDate CalendarDate, endDate CalendarDate) ([]DaySummary, error) {
	if restaurantID.IsZero() {
		return nil, fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
	}
	if startDate.IsZero() || endDate.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", ErrBadRequest)
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: end date precedes start date", ErrBadRequest)
	}

	reservations, err := service.store.ListReservations(requestContext, restaurantID, ReservationFilter{
		DateFrom: &startDate,
		DateTo:   &endDate,
		Statuses: []ReservationStatus{StatusPending, StatusConfirmed, StatusWaitlist, StatusSeated, StatusCompleted, StatusNoShow, StatusReminded},
	})
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]Reservation)
	for _, reservation := range reservations {
		key := reservation.Date.String()
		byDate[key] = append(byDate[key], reservation)
	}

	dayCount := startDate.DaysUntil(endDate) + 1
	summaries := make([]DaySummary, 0, dayCount)
	total := 0
	for date := startDate; !endDate.Before(date); date = date.Next() {
		summary := DaySummary{Date: date}
		for _, reservation := range byDate[date.String()] {
			summary.Reservations++
			summary.Guests += reservation.PartySize.Int()
			switch reservation.Status {
			case StatusConfirmed, StatusSeated:
				summary.Confirmed++
			case StatusPending:
				summary.Pending++
			case StatusWaitlist:
				summary.Waitlist++
			}
		}
		total += summary.Reservations
		summaries = append(summaries, summary)
	}

	mean := float64(total) / float64(dayCount)
	for index := range summaries {
		count := summaries[index].Reservations
		summaries[index].Peak = count > 0 && float64(count) >= peakThresholdFactor*mean
	}
	return summaries, nil
}

// GetDaySchedule returns the per-table floor view for one day, with
// reservations lacking a table collected into the unassigned bucket and an
// hourly count across operating hours.
func (service *Service) GetDaySchedule(requestContext context.Context, restaurantID RestaurantID, date CalendarDate) (DaySchedule, error) {
	if restaurantID.IsZero() {
		return DaySchedule{}, fmt.Errorf("%w: missing restaurant context", ErrBadRequest)
	}
	if date.IsZero() {
		return DaySchedule{}, fmt.Errorf("%w: date is required", ErrBadRequest)
	}

	tables, err := service.store.ListTables(requestContext, restaurantID)
	if err != nil {
		return DaySchedule{}, err
	}
	reservations, err := service.store.ListReservations(requestContext, restaurantID, ReservationFilter{
		Date:     &date,
		Statuses: []ReservationStatus{StatusPending, StatusConfirmed, StatusWaitlist, StatusSeated, StatusCompleted, StatusNoShow, StatusReminded},
	})
	if err != nil {
		return DaySchedule{}, err
	}

	byTable := make(map[TableID][]Reservation)
	unassigned := make([]Reservation, 0)
	for _, reservation := range reservations {
		if reservation.TableID == nil {
			unassigned = append(unassigned, reservation)
			continue
		}
		byTable[*reservation.TableID] = append(byTable[*reservation.TableID], reservation)
	}

	schedule := DaySchedule{
		Date:       date,
		Tables:     make([]TableSchedule, 0, len(tables)),
		Unassigned: unassigned,
	}
	for _, table := range tables {
		schedule.Tables = append(schedule.Tables, TableSchedule{
			Table:        table,
			Reservations: byTable[table.TableID],
		})
	}

	openHour := service.schedule.Open.Hour()
	closeHour := service.schedule.Close.Hour()
	for hour := openHour; hour < closeHour; hour++ {
		hourWindow := TimeWindow{startMinute: hour * 60, endMinute: (hour + 1) * 60}
		summary := HourSummary{Hour: hour, Label: hourWindow.Start().String()}
		for _, reservation := range reservations {
			if Overlaps(reservation.Window, hourWindow, 0) {
				summary.Reservations++
				summary.Guests += reservation.PartySize.Int()
			}
		}
		schedule.Hours = append(schedule.Hours, summary)
	}
	return schedule, nil
}
