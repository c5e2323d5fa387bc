package booking

import "time"

// Overlaps reports whether window a conflicts with window b after expanding b
// by buffer on both ends. The comparison is strict, so with a zero buffer two
// windows that merely touch (a ends exactly when b starts) do not overlap.
func Overlaps(a TimeWindow, b TimeWindow, buffer time.Duration) bool {
	bufferMinutes := int(buffer / time.Minute)
	return a.startMinute < b.endMinute+bufferMinutes && a.endMinute > b.startMinute-bufferMinutes
}
