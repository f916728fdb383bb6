package timezone

import (
	"testing"
	"time"
)

// TestResolveKnownZone ensures a UTC instant maps to the recipient's
// local wall-clock time.
func TestResolveKnownZone(t *testing.T) {
	// 2024-01-08 14:30 UTC is 09:30 in New York (EST, UTC-5)
	instant := time.Date(2024, 1, 8, 14, 30, 0, 0, time.UTC)

	local := Resolve(instant, "America/New_York")
	if local.Hour() != 9 {
		t.Fatalf("expected hour 9, got %d", local.Hour())
	}
	if local.Weekday() != time.Monday {
		t.Fatalf("expected Monday, got %v", local.Weekday())
	}
	if !local.Equal(instant) {
		t.Fatal("expected the same instant in a different zone")
	}
}

// TestResolveUnknownZoneFallsBackToUTC ensures bad zone data degrades to
// UTC instead of failing.
func TestResolveUnknownZoneFallsBackToUTC(t *testing.T) {
	instant := time.Date(2024, 1, 8, 14, 30, 0, 0, time.UTC)

	local := Resolve(instant, "Not/AZone")
	if !local.Equal(instant) {
		t.Fatalf("expected unchanged instant, got %v", local)
	}
	if local.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", local.Location())
	}
}

// TestResolveEmptyZoneFallsBackToUTC ensures an empty identifier is
// treated like an unknown one.
func TestResolveEmptyZoneFallsBackToUTC(t *testing.T) {
	instant := time.Date(2024, 1, 8, 14, 30, 0, 0, time.UTC)

	local := Resolve(instant, "")
	if local.Location() != time.UTC {
		t.Fatalf("expected UTC location, got %v", local.Location())
	}
}
