package booking

import (
	"math/rand"
	"testing"
	"time"
)

func TestOverlapsTouchingWindowsWithZeroBuffer(test *testing.T) {
	test.Parallel()
	first := mustWindow(test, "18:00", 90*time.Minute)
	second := mustWindow(test, "19:30", 90*time.Minute)
	if Overlaps(first, second, 0) {
		test.Fatalf("touching windows must not overlap with zero buffer")
	}
	if Overlaps(second, first, 0) {
		test.Fatalf("touching windows must not overlap with zero buffer (reversed)")
	}
}

func TestOverlapsTouchingWindowsWithBuffer(test *testing.T) {
	test.Parallel()
	first := mustWindow(test, "18:00", 90*time.Minute)
	second := mustWindow(test, "19:30", 90*time.Minute)
	if !Overlaps(first, second, 15*time.Minute) {
		test.Fatalf("buffer must push touching windows into conflict")
	}
}

func TestOverlapsContainedWindow(test *testing.T) {
	test.Parallel()
	outer := mustWindow(test, "18:00", 3*time.Hour)
	inner := mustWindow(test, "19:00", 30*time.Minute)
	if !Overlaps(outer, inner, 0) {
		test.Fatalf("contained window must overlap")
	}
	if !Overlaps(inner, outer, 0) {
		test.Fatalf("containing window must overlap")
	}
}

func TestOverlapsDisjointWindowsOutsideBuffer(test *testing.T) {
	test.Parallel()
	first := mustWindow(test, "11:00", time.Hour)
	second := mustWindow(test, "14:00", time.Hour)
	if Overlaps(first, second, 15*time.Minute) {
		test.Fatalf("windows two hours apart must not overlap under a 15 minute buffer")
	}
}

func TestOverlapsIsSymmetricUnderRandomWindows(test *testing.T) {
	test.Parallel()
	random := rand.New(rand.NewSource(4217))
	for iteration := 0; iteration < 500; iteration++ {
		first := randomWindow(random)
		second := randomWindow(random)
		buffer := time.Duration(random.Intn(4)) * 15 * time.Minute
		if Overlaps(first, second, buffer) != Overlaps(second, first, buffer) {
			test.Fatalf("overlap must be symmetric: %s vs %s buffer %s", first, second, buffer)
		}
	}
}

func randomWindow(random *rand.Rand) TimeWindow {
	startMinute := random.Intn(22 * 60)
	durationMinutes := 15 * (1 + random.Intn(8))
	endMinute := startMinute + durationMinutes
	if endMinute > minutesPerDay {
		endMinute = minutesPerDay
	}
	return TimeWindow{startMinute: startMinute, endMinute: endMinute}
}
