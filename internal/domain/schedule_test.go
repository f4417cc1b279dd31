package domain

import (
	"testing"
	"time"
)

func validInput(date, slot string) DraftInput {
	return DraftInput{TreatmentID: "t-1", DentistID: "d-1", Date: date, Time: slot}
}

func TestValidateDraftDates(t *testing.T) {
	rules := DefaultBookingRules()
	today := NewDate(2025, time.January, 7) // Tuesday

	tests := []struct {
		name   string
		date   string
		reason string
	}{
		{name: "today", date: "2025-01-07"},
		{name: "exactly 90 days ahead", date: "2025-04-07"},
		{name: "91 days ahead", date: "2025-04-08", reason: ReasonBeyondWindow},
		{name: "sunday", date: "2025-01-12", reason: ReasonClosedDay},
		{name: "yesterday", date: "2025-01-06", reason: ReasonInPast},
		{name: "garbage", date: "07/01/2025", reason: ReasonInvalidFormat},
		{name: "missing", date: "", reason: ReasonRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, errs := rules.ValidateDraft(validInput(tt.date, "09:00"), today)
			got := errs[FieldDate]
			if got != tt.reason {
				t.Fatalf("date reason = %q, want %q", got, tt.reason)
			}
			if tt.reason == "" && date.String() != tt.date {
				t.Errorf("parsed date = %s, want %s", date, tt.date)
			}
		})
	}
}

func TestValidateDraftSlots(t *testing.T) {
	rules := DefaultBookingRules()
	today := NewDate(2025, time.January, 7)

	tests := []struct {
		slot string
		ok   bool
	}{
		{"08:00", true},
		{"12:00", true},
		{"14:00", true},
		{"17:30", true},
		{"12:30", false},
		{"13:00", false},
		{"13:30", false},
		{"08:15", false},
		{"18:00", false},
		{"7:30", false},
		{"noon", false},
	}

	for _, tt := range tests {
		t.Run(tt.slot, func(t *testing.T) {
			_, errs := rules.ValidateDraft(validInput("2025-01-08", tt.slot), today)
			if tt.ok && errs != nil {
				t.Fatalf("ValidateDraft(%q) errors = %v", tt.slot, errs)
			}
			if !tt.ok && errs[FieldTime] != ReasonInvalidSlot {
				t.Fatalf("time reason = %q, want %q", errs[FieldTime], ReasonInvalidSlot)
			}
		})
	}
}

func TestValidateDraftRequiresAllFields(t *testing.T) {
	_, errs := DefaultBookingRules().ValidateDraft(DraftInput{}, NewDate(2025, time.January, 7))
	want := []string{FieldDate, FieldDentist, FieldTime, FieldTreatment}
	got := errs.Fields()
	if len(got) != len(want) {
		t.Fatalf("Fields() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Fields() = %v, want %v", got, want)
		}
		if errs[want[i]] != ReasonRequired {
			t.Errorf("%s reason = %q, want required", want[i], errs[want[i]])
		}
	}
}

func TestDefaultSlotsShape(t *testing.T) {
	if len(DefaultSlots) != 17 {
		t.Fatalf("len(DefaultSlots) = %d, want 17", len(DefaultSlots))
	}
	if DefaultSlots[0] != "08:00" || DefaultSlots[len(DefaultSlots)-1] != "17:30" {
		t.Errorf("slot bounds = %s..%s", DefaultSlots[0], DefaultSlots[len(DefaultSlots)-1])
	}
}
