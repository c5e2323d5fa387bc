package booking

import (
	"errors"
	"testing"
	"time"
)

func TestNewPartySizeRejectsZero(test *testing.T) {
	test.Parallel()
	if _, err := NewPartySize(0); !errors.Is(err, ErrInvalidPartySize) {
		test.Fatalf("expected ErrInvalidPartySize, got %v", err)
	}
	if _, err := NewPartySize(-3); !errors.Is(err, ErrInvalidPartySize) {
		test.Fatalf("expected ErrInvalidPartySize for negative size, got %v", err)
	}
}

func TestNewRestaurantIDRejectsBlank(test *testing.T) {
	test.Parallel()
	if _, err := NewRestaurantID("   "); !errors.Is(err, ErrInvalidRestaurantID) {
		test.Fatalf("expected ErrInvalidRestaurantID, got %v", err)
	}
}

func TestNewConfirmationCodeValidation(test *testing.T) {
	test.Parallel()
	if _, err := NewConfirmationCode("AB12CD34"); err != nil {
		test.Fatalf("valid code rejected: %v", err)
	}
	if _, err := NewConfirmationCode("short"); !errors.Is(err, ErrInvalidConfirmationCode) {
		test.Fatalf("expected length failure, got %v", err)
	}
	if _, err := NewConfirmationCode("ab12cd34"); !errors.Is(err, ErrInvalidConfirmationCode) {
		test.Fatalf("expected lowercase rejection, got %v", err)
	}
}

func TestGenerateConfirmationCodeIsWellFormed(test *testing.T) {
	test.Parallel()
	for iteration := 0; iteration < 50; iteration++ {
		code := GenerateConfirmationCode()
		if _, err := NewConfirmationCode(code.String()); err != nil {
			test.Fatalf("generated code %q failed validation: %v", code, err)
		}
	}
}

func TestParseCalendarDate(test *testing.T) {
	test.Parallel()
	date, err := ParseCalendarDate("2026-01-26")
	if err != nil {
		test.Fatalf("parse date: %v", err)
	}
	if date.String() != "2026-01-26" {
		test.Fatalf("round trip mismatch: %s", date)
	}
	if _, err := ParseCalendarDate("2026-02-30"); !errors.Is(err, ErrInvalidCalendarDate) {
		test.Fatalf("expected invalid date, got %v", err)
	}
	if _, err := ParseCalendarDate("not-a-date"); !errors.Is(err, ErrInvalidCalendarDate) {
		test.Fatalf("expected parse failure, got %v", err)
	}
}

func TestCalendarDateOrdering(test *testing.T) {
	test.Parallel()
	earlier := mustDate(test, "2026-01-26")
	later := mustDate(test, "2026-02-01")
	if !earlier.Before(later) || later.Before(earlier) {
		test.Fatalf("date ordering broken")
	}
	if earlier.DaysUntil(later) != 6 {
		test.Fatalf("expected 6 days between, got %d", earlier.DaysUntil(later))
	}
	if next := mustDate(test, "2026-01-31").Next(); next.String() != "2026-02-01" {
		test.Fatalf("month rollover broken: %s", next)
	}
}

func TestParseClockTime(test *testing.T) {
	test.Parallel()
	clock, err := ParseClockTime("18:30")
	if err != nil {
		test.Fatalf("parse clock: %v", err)
	}
	if clock.MinuteOfDay() != 18*60+30 {
		test.Fatalf("unexpected minute of day: %d", clock.MinuteOfDay())
	}
	if _, err := ParseClockTime("25:00"); !errors.Is(err, ErrInvalidClockTime) {
		test.Fatalf("expected invalid clock time, got %v", err)
	}
}

func TestNewTimeWindowValidation(test *testing.T) {
	test.Parallel()
	window := mustWindow(test, "18:00", 90*time.Minute)
	if window.String() != "18:00-19:30" {
		test.Fatalf("unexpected window format: %s", window)
	}
	if window.Duration() != 90*time.Minute {
		test.Fatalf("unexpected duration: %s", window.Duration())
	}
	if _, err := NewTimeWindow(mustClock(test, "18:00"), 0); !errors.Is(err, ErrInvalidTimeWindow) {
		test.Fatalf("expected zero duration rejection, got %v", err)
	}
	if _, err := NewTimeWindow(mustClock(test, "23:30"), time.Hour); !errors.Is(err, ErrInvalidTimeWindow) {
		test.Fatalf("expected past-midnight rejection, got %v", err)
	}
}

func TestParseReservationStatus(test *testing.T) {
	test.Parallel()
	for _, raw := range []string{"pending", "confirmed", "waitlist", "seated", "completed", "cancelled", "no_show", "reminded"} {
		if _, err := ParseReservationStatus(raw); err != nil {
			test.Fatalf("valid status %q rejected: %v", raw, err)
		}
	}
	if _, err := ParseReservationStatus("tentative"); !errors.Is(err, ErrInvalidReservationStatus) {
		test.Fatalf("expected invalid status, got %v", err)
	}
}

func TestStatusActiveAndTerminal(test *testing.T) {
	test.Parallel()
	for _, status := range []ReservationStatus{StatusCancelled, StatusNoShow, StatusCompleted} {
		if status.Active() {
			test.Fatalf("%s must not hold the table", status)
		}
	}
	for _, status := range []ReservationStatus{StatusPending, StatusConfirmed, StatusWaitlist, StatusSeated, StatusReminded} {
		if !status.Active() {
			test.Fatalf("%s must hold the table", status)
		}
	}
	if StatusSeated.Terminal() || !StatusCompleted.Terminal() {
		test.Fatalf("terminal classification broken")
	}
}

func TestParseReservationSource(test *testing.T) {
	test.Parallel()
	if _, err := ParseReservationSource("walk_in"); err != nil {
		test.Fatalf("walk_in rejected: %v", err)
	}
	if _, err := ParseReservationSource("carrier_pigeon"); !errors.Is(err, ErrInvalidReservationSource) {
		test.Fatalf("expected invalid source, got %v", err)
	}
}

func TestScheduleConfigValidation(test *testing.T) {
	test.Parallel()
	config := DefaultScheduleConfig()
	if err := config.Validate(); err != nil {
		test.Fatalf("default schedule invalid: %v", err)
	}
	config.Open, config.Close = config.Close, config.Open
	if err := config.Validate(); !errors.Is(err, ErrInvalidScheduleConfig) {
		test.Fatalf("expected invalid schedule, got %v", err)
	}
}
