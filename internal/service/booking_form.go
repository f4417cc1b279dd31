package service

import (
	"errors"
	"strings"

	"github.com/spec-kit/clinic-booking/internal/domain"
	apperrors "github.com/spec-kit/clinic-booking/pkg/util/errorutil"
)

// FormState is the lifecycle position of a booking form. A failed submission returns
// the form to FormComplete with Err set.
type FormState string

const (
	FormEmpty           FormState = "empty"
	FormPartiallyFilled FormState = "partially_filled"
	FormComplete        FormState = "complete"
	FormSubmitting      FormState = "submitting"
	FormSucceeded       FormState = "succeeded"
)

// ErrFormBusy is returned when a form is edited or resubmitted while a submission is in flight.
var ErrFormBusy = errors.New("booking form is submitting")

// BookingForm collects the four booking fields and tracks whether they can be submitted.
// A form is owned by one caller and is not safe for concurrent use.
type BookingForm struct {
	rules         domain.BookingRules
	today         func() domain.Date
	input         domain.DraftInput
	state         FormState
	fieldErrs     domain.FieldErrors
	err           error
	appointmentID string
}

func newBookingForm(rules domain.BookingRules, today func() domain.Date) *BookingForm {
	return &BookingForm{rules: rules, today: today, state: FormEmpty}
}

// Set assigns one field by its draft name (treatmentId, dentistId, date, time).
func (f *BookingForm) Set(field, value string) error {
	if f.state == FormSubmitting {
		return ErrFormBusy
	}
	value = strings.TrimSpace(value)
	switch field {
	case domain.FieldTreatment:
		f.input.TreatmentID = value
	case domain.FieldDentist:
		f.input.DentistID = value
	case domain.FieldDate:
		f.input.Date = value
	case domain.FieldTime:
		f.input.Time = value
	default:
		return apperrors.NewValidationRejected("unknown booking field", map[string]any{"field": field})
	}
	f.err = nil
	f.appointmentID = ""
	f.refresh()
	return nil
}

// Fill assigns every field at once.
func (f *BookingForm) Fill(in domain.DraftInput) error {
	if f.state == FormSubmitting {
		return ErrFormBusy
	}
	f.input = domain.DraftInput{
		TreatmentID: strings.TrimSpace(in.TreatmentID),
		DentistID:   strings.TrimSpace(in.DentistID),
		Date:        strings.TrimSpace(in.Date),
		Time:        strings.TrimSpace(in.Time),
	}
	f.err = nil
	f.appointmentID = ""
	f.refresh()
	return nil
}

// Reset clears the form back to Empty.
func (f *BookingForm) Reset() {
	f.input = domain.DraftInput{}
	f.state = FormEmpty
	f.fieldErrs = nil
	f.err = nil
	f.appointmentID = ""
}

// State returns the current lifecycle state.
func (f *BookingForm) State() FormState { return f.state }

// Input returns the current field values.
func (f *BookingForm) Input() domain.DraftInput { return f.input }

// Errors returns the per-field rejections of the current values.
func (f *BookingForm) Errors() domain.FieldErrors { return f.fieldErrs }

// Err returns the error of the last failed submission.
func (f *BookingForm) Err() error { return f.err }

// AppointmentID returns the id assigned by the last successful submission.
func (f *BookingForm) AppointmentID() string { return f.appointmentID }

// Failed reports whether the last submission failed. The values are kept for a retry.
func (f *BookingForm) Failed() bool { return f.err != nil }

// CanSubmit reports whether the form may be submitted.
func (f *BookingForm) CanSubmit() bool {
	return f.state == FormComplete
}

func (f *BookingForm) refresh() {
	if f.input == (domain.DraftInput{}) {
		f.state = FormEmpty
		f.fieldErrs = nil
		return
	}
	_, errs := f.rules.ValidateDraft(f.input, f.today())
	f.fieldErrs = errs
	if len(errs) == 0 {
		f.state = FormComplete
		return
	}
	f.state = FormPartiallyFilled
}

// begin moves the form into Submitting. The values are re-checked because the day may
// have changed since they were entered.
func (f *BookingForm) begin() (domain.DraftInput, error) {
	switch f.state {
	case FormSubmitting:
		return domain.DraftInput{}, ErrFormBusy
	case FormComplete:
	default:
		return domain.DraftInput{}, f.rejection()
	}
	if _, errs := f.rules.ValidateDraft(f.input, f.today()); len(errs) > 0 {
		f.fieldErrs = errs
		f.state = FormPartiallyFilled
		return domain.DraftInput{}, f.rejection()
	}
	f.state = FormSubmitting
	return f.input, nil
}

func (f *BookingForm) succeed(id string) {
	f.input = domain.DraftInput{}
	f.fieldErrs = nil
	f.err = nil
	f.appointmentID = id
	f.state = FormSucceeded
}

func (f *BookingForm) fail(err error) {
	f.err = err
	f.state = FormComplete
	var de *apperrors.DomainError
	if errors.As(err, &de) && de.Code == apperrors.CodeValidationRejected {
		fe := domain.FieldErrors{}
		for k, v := range de.Details {
			if s, ok := v.(string); ok {
				fe[k] = s
			}
		}
		f.fieldErrs = fe
	}
}

func (f *BookingForm) rejection() error {
	if len(f.fieldErrs) == 0 {
		_, f.fieldErrs = f.rules.ValidateDraft(f.input, f.today())
	}
	return apperrors.NewValidationRejected("appointment is incomplete or invalid", f.fieldErrs.Details())
}
