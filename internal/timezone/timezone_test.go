package timezone

import (
	"testing"
	"time"
)

func TestLocationFallsBack(t *testing.T) {
	if IsValid("") {
		t.Fatal("empty timezone reported valid")
	}
	if IsValid("Mars/Olympus_Mons") {
		t.Fatal("unknown timezone reported valid")
	}

	loc := Location("Mars/Olympus_Mons")
	if loc == nil {
		t.Fatal("Location() returned nil")
	}
	if want := Location(DefaultTimezone); loc.String() != want.String() {
		t.Errorf("Location() = %s, want %s", loc, want)
	}
}

func TestClockUsesLocation(t *testing.T) {
	loc := time.FixedZone("clinic", 2*60*60)
	now := Clock(loc)()
	if now.Location() != loc {
		t.Errorf("Clock() location = %v, want %v", now.Location(), loc)
	}
}
