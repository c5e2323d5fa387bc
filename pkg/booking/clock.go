package booking

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// CalendarDate is a timezone-naive calendar day. Reservations live in the
// restaurant's local wall clock; no instant conversion happens in the core.
type CalendarDate struct {
	year  int
	month time.Month
	day   int
}

// NewCalendarDate validates a calendar day.
func NewCalendarDate(year int, month time.Month, day int) (CalendarDate, error) {
	if year < 1 {
		return CalendarDate{}, fmt.Errorf("%w: year %d", ErrInvalidCalendarDate, year)
	}
	normalized := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if normalized.Year() != year || normalized.Month() != month || normalized.Day() != day {
		return CalendarDate{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidCalendarDate, year, int(month), day)
	}
	return CalendarDate{year: year, month: month, day: day}, nil
}

// ParseCalendarDate parses "YYYY-MM-DD".
func ParseCalendarDate(raw string) (CalendarDate, error) {
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("%w: %q", ErrInvalidCalendarDate, raw)
	}
	return NewCalendarDate(parsed.Year(), parsed.Month(), parsed.Day())
}

// String formats the date as "YYYY-MM-DD".
func (date CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", date.year, int(date.month), date.day)
}

// IsZero reports whether the date is unset.
func (date CalendarDate) IsZero() bool {
	return date.year == 0
}

// Next returns the following calendar day.
func (date CalendarDate) Next() CalendarDate {
	next := time.Date(date.year, date.month, date.day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return CalendarDate{year: next.Year(), month: next.Month(), day: next.Day()}
}

// Before reports whether date precedes other.
func (date CalendarDate) Before(other CalendarDate) bool {
	if date.year != other.year {
		return date.year < other.year
	}
	if date.month != other.month {
		return date.month < other.month
	}
	return date.day < other.day
}

// Equal reports whether two dates name the same day.
func (date CalendarDate) Equal(other CalendarDate) bool {
	return date.year == other.year && date.month == other.month && date.day == other.day
}

// DaysUntil returns the day count from date to other, negative when other is
// earlier.
func (date CalendarDate) DaysUntil(other CalendarDate) int {
	from := time.Date(date.year, date.month, date.day, 0, 0, 0, 0, time.UTC)
	until := time.Date(other.year, other.month, other.day, 0, 0, 0, 0, time.UTC)
	return int(until.Sub(from) / (24 * time.Hour))
}

// ClockTime is a minute-resolution local time of day.
type ClockTime struct {
	minuteOfDay int
}

// NewClockTime validates an hour/minute pair.
func NewClockTime(hour int, minute int) (ClockTime, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("%w: %02d:%02d", ErrInvalidClockTime, hour, minute)
	}
	return ClockTime{minuteOfDay: hour*60 + minute}, nil
}

// ParseClockTime parses "HH:MM".
func ParseClockTime(raw string) (ClockTime, error) {
	parsed, err := time.Parse("15:04", raw)
	if err != nil {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidClockTime, raw)
	}
	return NewClockTime(parsed.Hour(), parsed.Minute())
}

// String formats the time as "HH:MM". Midnight at the end of the day renders
// as "24:00".
func (clock ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", clock.minuteOfDay/60, clock.minuteOfDay%60)
}

// MinuteOfDay returns minutes since midnight.
func (clock ClockTime) MinuteOfDay() int {
	return clock.minuteOfDay
}

// Hour returns the hour component.
func (clock ClockTime) Hour() int {
	return clock.minuteOfDay / 60
}

// Before reports whether clock precedes other.
func (clock ClockTime) Before(other ClockTime) bool {
	return clock.minuteOfDay < other.minuteOfDay
}

// TimeWindow is a half-open [start, end) span within one day, held at minute
// resolution.
type TimeWindow struct {
	startMinute int
	endMinute   int
}

// NewTimeWindow builds a window from a start time and a positive duration.
// The window must not run past midnight.
func NewTimeWindow(start ClockTime, duration time.Duration) (TimeWindow, error) {
	durationMinutes := int(duration / time.Minute)
	if durationMinutes <= 0 {
		return TimeWindow{}, fmt.Errorf("%w: duration must be positive", ErrInvalidTimeWindow)
	}
	endMinute := start.MinuteOfDay() + durationMinutes
	if endMinute > minutesPerDay {
		return TimeWindow{}, fmt.Errorf("%w: window runs past midnight", ErrInvalidTimeWindow)
	}
	return TimeWindow{startMinute: start.MinuteOfDay(), endMinute: endMinute}, nil
}

// NewTimeWindowBetween builds a window from explicit start and end times.
func NewTimeWindowBetween(start ClockTime, end ClockTime) (TimeWindow, error) {
	if !start.Before(end) {
		return TimeWindow{}, fmt.Errorf("%w: start must precede end", ErrInvalidTimeWindow)
	}
	return TimeWindow{startMinute: start.MinuteOfDay(), endMinute: end.MinuteOfDay()}, nil
}

// NewTimeWindowFromMinutes rebuilds a window from stored minute offsets.
func NewTimeWindowFromMinutes(startMinute int, endMinute int) (TimeWindow, error) {
	if startMinute < 0 || endMinute > minutesPerDay || startMinute >= endMinute {
		return TimeWindow{}, fmt.Errorf("%w: minutes %d-%d", ErrInvalidTimeWindow, startMinute, endMinute)
	}
	return TimeWindow{startMinute: startMinute, endMinute: endMinute}, nil
}

// Start returns the window's opening time.
func (window TimeWindow) Start() ClockTime {
	return ClockTime{minuteOfDay: window.startMinute}
}

// End returns the window's closing time.
func (window TimeWindow) End() ClockTime {
	return ClockTime{minuteOfDay: window.endMinute}
}

// Duration returns end minus start.
func (window TimeWindow) Duration() time.Duration {
	return time.Duration(window.endMinute-window.startMinute) * time.Minute
}

// IsZero reports whether the window is unset.
func (window TimeWindow) IsZero() bool {
	return window.startMinute == 0 && window.endMinute == 0
}

// String formats the window as "HH:MM-HH:MM".
func (window TimeWindow) String() string {
	return fmt.Sprintf("%s-%s", window.Start(), window.End())
}
