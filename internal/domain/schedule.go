package domain

import (
	"sort"
	"strings"
	"time"
)

// Draft field names, also used as keys in validation details.
const (
	FieldTreatment = "treatmentId"
	FieldDentist   = "dentistId"
	FieldDate      = "date"
	FieldTime      = "time"
)

// Validation reasons reported per field.
const (
	ReasonRequired      = "required"
	ReasonInvalidFormat = "invalid_format"
	ReasonInPast        = "in_past"
	ReasonBeyondWindow  = "beyond_window"
	ReasonClosedDay     = "closed_day"
	ReasonInvalidSlot   = "invalid_slot"
	ReasonUnknown       = "unknown"
	ReasonUnavailable   = "unavailable"
)

// DefaultWindowDays is how far ahead appointments may be booked.
const DefaultWindowDays = 90

// DefaultSlots are the half-hour start times offered by the clinic. The lunch gap
// between 12:30 and 14:00 is not bookable.
var DefaultSlots = []string{
	"08:00", "08:30", "09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00",
	"14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00", "17:30",
}

// DraftInput holds the raw booking fields as submitted by a form.
type DraftInput struct {
	TreatmentID string
	DentistID   string
	Date        string
	Time        string
}

// FieldErrors maps a field name to the reason it was rejected.
type FieldErrors map[string]string

// Fields returns the rejected field names in a stable order.
func (fe FieldErrors) Fields() []string {
	out := make([]string, 0, len(fe))
	for k := range fe {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Details converts the errors into a map suitable for an error envelope.
func (fe FieldErrors) Details() map[string]any {
	out := make(map[string]any, len(fe))
	for k, v := range fe {
		out[k] = v
	}
	return out
}

// BookingRules describes when appointments may be booked.
type BookingRules struct {
	WindowDays int
	ClosedDay  time.Weekday
	Slots      []string
}

// DefaultBookingRules returns the clinic's standard rules.
func DefaultBookingRules() BookingRules {
	return BookingRules{
		WindowDays: DefaultWindowDays,
		ClosedDay:  time.Sunday,
		Slots:      append([]string(nil), DefaultSlots...),
	}
}

// LastBookableDay returns the last date accepted relative to today.
func (r BookingRules) LastBookableDay(today Date) Date {
	return today.AddDays(r.WindowDays)
}

// IsSlot reports whether hhmm is one of the offered start times.
func (r BookingRules) IsSlot(hhmm string) bool {
	for _, s := range r.Slots {
		if s == hhmm {
			return true
		}
	}
	return false
}

// CheckDate validates a booking date against today.
func (r BookingRules) CheckDate(d, today Date) string {
	switch {
	case d.Before(today):
		return ReasonInPast
	case d.After(r.LastBookableDay(today)):
		return ReasonBeyondWindow
	case d.Weekday() == r.ClosedDay:
		return ReasonClosedDay
	}
	return ""
}

// ValidateDraft checks presence and validity of every booking field. It performs no I/O.
// The parsed date is returned when the date field itself is valid.
func (r BookingRules) ValidateDraft(in DraftInput, today Date) (Date, FieldErrors) {
	errs := FieldErrors{}

	if strings.TrimSpace(in.TreatmentID) == "" {
		errs[FieldTreatment] = ReasonRequired
	}
	if strings.TrimSpace(in.DentistID) == "" {
		errs[FieldDentist] = ReasonRequired
	}

	var date Date
	switch raw := strings.TrimSpace(in.Date); {
	case raw == "":
		errs[FieldDate] = ReasonRequired
	default:
		parsed, err := ParseDate(raw)
		if err != nil {
			errs[FieldDate] = ReasonInvalidFormat
			break
		}
		if reason := r.CheckDate(parsed, today); reason != "" {
			errs[FieldDate] = reason
			break
		}
		date = parsed
	}

	switch raw := strings.TrimSpace(in.Time); {
	case raw == "":
		errs[FieldTime] = ReasonRequired
	case !r.IsSlot(raw):
		errs[FieldTime] = ReasonInvalidSlot
	}

	if len(errs) == 0 {
		return date, nil
	}
	return date, errs
}
