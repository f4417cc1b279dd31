package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var got []string
	d.Subscribe(EventAppointmentBooked, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventAppointmentBooked, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.SubjectID)
		return nil
	})
	d.Subscribe(EventAppointmentCancelled, func(context.Context, Event) error {
		t.Error("cancelled handler invoked for booked event")
		return nil
	})

	_ = d.Publish(context.Background(), NewEvent(EventAppointmentBooked, "a-1", "u-1", nil))

	if len(got) != 2 || got[0] != "first:a-1" || got[1] != "second:a-1" {
		t.Fatalf("deliveries = %v", got)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	calls := 0
	unsubscribe := d.Subscribe(EventIdentityChanged, func(context.Context, Event) error {
		calls++
		return nil
	})

	_ = d.Publish(context.Background(), NewEvent(EventIdentityChanged, "u-1", "u-1", nil))
	unsubscribe()
	unsubscribe()
	_ = d.Publish(context.Background(), NewEvent(EventIdentityChanged, "u-1", "u-1", nil))

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestHandlerErrorsAreReported(t *testing.T) {
	var reported error
	d := NewInMemoryDispatcher(func(_ Event, err error) { reported = err })
	boom := errors.New("boom")
	d.Subscribe(EventCatalogSeeded, func(context.Context, Event) error { return boom })
	delivered := false
	d.Subscribe(EventCatalogSeeded, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	if err := d.Publish(context.Background(), NewEvent(EventCatalogSeeded, "catalog", "", nil)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !errors.Is(reported, boom) {
		t.Errorf("reported = %v, want boom", reported)
	}
	if !delivered {
		t.Error("second handler not invoked after first failed")
	}
}
