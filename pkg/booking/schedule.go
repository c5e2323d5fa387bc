package booking

import (
	"fmt"
	"time"
)

// ScheduleConfig fixes the operating hours and pacing rules the scheduler
// works under. The defaults mirror the dining room policy; whether these
// should become per-restaurant data is an open product question, so they stay
// deployment-wide for now.
type ScheduleConfig struct {
	// Open and Close bound the bookable day.
	Open  ClockTime
	Close ClockTime
	// SlotInterval is the width of the availability grid.
	SlotInterval time.Duration
	// Buffer pads every existing reservation on both ends before overlap
	// checks, reserving turnover time between parties.
	Buffer time.Duration
	// DefaultDuration is the dining duration assumed when a request does not
	// specify one.
	DefaultDuration time.Duration
}

// DefaultScheduleConfig returns the standard dining room schedule: open
// 10:00-22:00, 30 minute slots, 15 minute buffer, 90 minute seatings.
func DefaultScheduleConfig() ScheduleConfig {
	open, _ := NewClockTime(10, 0)
	close, _ := NewClockTime(22, 0)
	return ScheduleConfig{
		Open:            open,
		Close:           close,
		SlotInterval:    30 * time.Minute,
		Buffer:          15 * time.Minute,
		DefaultDuration: 90 * time.Minute,
	}
}

// Validate ensures the schedule is internally consistent.
func (config ScheduleConfig) Validate() error {
	if !config.Open.Before(config.Close) {
		return fmt.Errorf("%w: open must precede close", ErrInvalidScheduleConfig)
	}
	if config.SlotInterval < time.Minute {
		return fmt.Errorf("%w: slot interval must be at least one minute", ErrInvalidScheduleConfig)
	}
	if config.Buffer < 0 {
		return fmt.Errorf("%w: buffer must not be negative", ErrInvalidScheduleConfig)
	}
	if config.DefaultDuration < time.Minute {
		return fmt.Errorf("%w: default duration must be at least one minute", ErrInvalidScheduleConfig)
	}
	return nil
}

// durationOrDefault substitutes the configured dining duration for a zero
// request duration.
func (config ScheduleConfig) durationOrDefault(duration time.Duration) time.Duration {
	if duration <= 0 {
		return config.DefaultDuration
	}
	return duration
}
