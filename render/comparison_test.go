package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/openfloorcontrol/showroom/surface"
)

func newTestComparison(t *testing.T, data string, sig *BookingSignal) (*Comparison, *[]Interaction) {
	t.Helper()
	c := NewComparison(Options{
		SurfaceID: "cmp",
		Type:      surface.TypeCardComparison,
		Data:      json.RawMessage(data),
		Booking:   sig,
	})
	var got []Interaction
	c.Subscribe(func(i Interaction) { got = append(got, i) })
	return c, &got
}

func withContext(t *testing.T, carID string) string {
	t.Helper()
	data, err := surface.WithBookingContext(json.RawMessage(twoCars), carID)
	if err != nil {
		t.Fatalf("WithBookingContext: %v", err)
	}
	return string(data)
}

func TestComparisonBookEmitsCardAction(t *testing.T) {
	c, got := newTestComparison(t, twoCars, NewBookingSignal())

	if len(c.Cars()) != 2 || c.Form() != nil {
		t.Fatalf("expected two cars and no form, got %d cars, form=%v", len(c.Cars()), c.Form())
	}
	if !c.Book("2") {
		t.Fatal("Book should succeed without a booking context")
	}
	if len(*got) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(*got))
	}
	i := (*got)[0]
	if i.Type != "" {
		t.Errorf("book action should be labelled by the slot, got type %q", i.Type)
	}
	if i.Payload["action"] != surface.CardActionBook || i.Payload["carId"] != "2" || i.Payload["surfaceId"] != "cmp" {
		t.Errorf("unexpected payload %v", i.Payload)
	}
	if c.Book("99") {
		t.Error("booking an unknown car should fail")
	}
}

func TestComparisonBookingContextShowsForm(t *testing.T) {
	c, got := newTestComparison(t, withContext(t, "1"), NewBookingSignal())

	if c.Form() == nil {
		t.Fatal("a booking context should bring up the embedded form")
	}
	if c.Form().CarID() != "1" {
		t.Errorf("form bound to car %s, want 1", c.Form().CarID())
	}
	if c.CanBook() || c.Book("2") || c.Book("1") {
		t.Error("Book must be disabled while a booking context is set")
	}
	if len(*got) != 0 {
		t.Errorf("disabled Book emitted %v", *got)
	}
	if !strings.Contains(c.View(120, false), "Book a test drive") {
		t.Error("form missing from the comparison view")
	}
}

func TestComparisonReemitsFormSubmitUntyped(t *testing.T) {
	c, got := newTestComparison(t, withContext(t, "1"), NewBookingSignal())
	f := c.Form()
	f.SetField("customer_name", "Ada")
	f.SetField("date", "2025-07-01")
	f.SetField("email", "ada@example.com")

	if !f.Submit() {
		t.Fatal("valid form should submit")
	}
	if len(*got) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(*got))
	}
	i := (*got)[0]
	if i.Type != "" {
		t.Errorf("submit should be re-emitted without a type, got %q", i.Type)
	}
	if i.Payload["email"] != "ada@example.com" || i.Payload["carId"] != "1" {
		t.Errorf("unexpected payload %v", i.Payload)
	}
}

func TestComparisonFormCancelRequestsContextClear(t *testing.T) {
	c, got := newTestComparison(t, withContext(t, "2"), NewBookingSignal())
	c.Form().Cancel()

	if len(*got) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(*got))
	}
	if (*got)[0].Payload["action"] != surface.CardActionCancelBooking {
		t.Errorf("unexpected payload %v", (*got)[0].Payload)
	}
}

func TestComparisonBookingSignalDisables(t *testing.T) {
	sig := NewBookingSignal()
	plain, _ := newTestComparison(t, twoCars, sig)
	booking, _ := newTestComparison(t, withContext(t, "1"), sig)

	sig.Raise()

	if !plain.Completed() || plain.CanBook() || plain.Book("1") {
		t.Error("completion should permanently disable Book")
	}
	if !booking.Form().Disabled() {
		t.Error("completion should disable the embedded form")
	}
	if booking.Form().SetField("email", "x@y.z") {
		t.Error("disabled form accepted input")
	}

	plain.Close()
	booking.Close()
	if sig.Subscribers() != 0 {
		t.Errorf("Close should unsubscribe, %d left", sig.Subscribers())
	}
}

func TestComparisonInvalidData(t *testing.T) {
	c, _ := newTestComparison(t, `{"cars":"nope"}`, nil)
	if c.Focusable() {
		t.Error("broken comparison should not take focus")
	}
	if !strings.Contains(c.View(80, false), "Could not render comparison") {
		t.Error("expected error view")
	}
}

func TestEndToEndBookingFlowThroughSlot(t *testing.T) {
	rec := &recorder{}
	sig := NewBookingSignal()
	s := NewSlot("cmp", rec.sink, sig)

	s.Sync(snapshot("cmp", surface.TypeCardComparison, twoCars))
	c := s.Renderer().(*Comparison)
	c.Book("1")

	if len(rec.events) != 1 || rec.events[0].Type != surface.EventCardAction {
		t.Fatalf("expected a cardAction, got %v", rec.events)
	}

	// The boundary applies the booking context locally; the slot rebuilds.
	if !s.Sync(snapshot("cmp", surface.TypeCardComparison, withContext(t, "1"))) {
		t.Fatal("booking context should rebuild the comparison")
	}
	c = s.Renderer().(*Comparison)
	if c.CanBook() || c.Form() == nil {
		t.Fatal("expected disabled Book and an embedded form")
	}

	c.Form().SetField("customer_name", "Ada")
	c.Form().SetField("date", "2025-07-01")
	c.Form().SetField("email", "ada@example.com")
	c.Form().Submit()

	last := rec.events[len(rec.events)-1]
	if last.Type != surface.EventCardAction || !last.Has("email") {
		t.Errorf("embedded submit should arrive as an untyped card action with email, got %+v", last)
	}
}
