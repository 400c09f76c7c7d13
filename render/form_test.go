package render

import (
	"encoding/json"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/openfloorcontrol/showroom/surface"
)

func newTestForm(sig *BookingSignal) (*BookingForm, *[]Interaction) {
	f := NewBookingForm(Options{
		SurfaceID: "bf",
		Type:      surface.TypeBookingForm,
		Data:      json.RawMessage(`{"carId":3,"make":"Ford","model":"Mustang","year":2024,"price":"$32,515","image":"assets/ford_mustang.jpg"}`),
		Booking:   sig,
	}, MinimalFields)
	var got []Interaction
	f.Subscribe(func(i Interaction) { got = append(got, i) })
	return f, &got
}

func TestBookingFormIsValid(t *testing.T) {
	f, _ := newTestForm(nil)
	if f.IsValid() {
		t.Error("empty form should be invalid")
	}
	f.SetField("date", "2025-06-01")
	if f.IsValid() {
		t.Error("form with an empty email should be invalid")
	}
	f.SetField("email", "   ")
	if f.IsValid() {
		t.Error("whitespace is empty")
	}
	f.SetField("email", "sam@example.com")
	if !f.IsValid() {
		t.Error("all fields set should be valid")
	}
}

func TestBookingFormSubmitNoopWhenInvalid(t *testing.T) {
	f, got := newTestForm(nil)
	f.SetField("date", "2025-06-01")
	if f.Submit() {
		t.Error("invalid form submitted")
	}
	if len(*got) != 0 {
		t.Errorf("invalid submit emitted %v", *got)
	}
}

func TestBookingFormSubmitPayload(t *testing.T) {
	f, got := newTestForm(nil)
	f.SetField("date", "2025-06-01")
	f.SetField("email", "sam@example.com")
	if !f.Submit() {
		t.Fatal("valid form should submit")
	}

	i := (*got)[0]
	if i.Type != surface.EventFormSubmit {
		t.Errorf("expected %s, got %s", surface.EventFormSubmit, i.Type)
	}
	want := map[string]any{
		"carId":     "3",
		"date":      "2025-06-01",
		"email":     "sam@example.com",
		"surfaceId": "bf",
	}
	if len(i.Payload) != len(want) {
		t.Fatalf("expected %d payload keys, got %v", len(want), i.Payload)
	}
	for k, v := range want {
		if i.Payload[k] != v {
			t.Errorf("payload[%s] = %v, want %v", k, i.Payload[k], v)
		}
	}
}

func TestBookingFormCancelIgnoresValidity(t *testing.T) {
	f, got := newTestForm(nil)
	if !f.Cancel() {
		t.Fatal("cancel should always be allowed on an enabled form")
	}
	i := (*got)[0]
	if i.Type != surface.EventCancel || i.Payload["surfaceId"] != "bf" || len(i.Payload) != 1 {
		t.Errorf("unexpected cancel %+v", i)
	}
}

func TestBookingFormDisabledIsInert(t *testing.T) {
	sig := NewBookingSignal()
	f, got := newTestForm(sig)
	f.SetField("date", "2025-06-01")
	f.SetField("email", "sam@example.com")

	sig.Raise()

	if !f.Disabled() || f.Focusable() {
		t.Fatal("booking completion should disable the form")
	}
	if f.Submit() || f.Cancel() || f.SetField("date", "2030-01-01") {
		t.Error("disabled form still acts")
	}
	f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if len(*got) != 0 {
		t.Errorf("disabled form emitted %v", *got)
	}
	if f.Value("date") != "2025-06-01" {
		t.Errorf("disabled form changed a value: %s", f.Value("date"))
	}
}

func TestBookingFormKeyboard(t *testing.T) {
	f, got := newTestForm(nil)
	for _, r := range "2025-06-01" {
		f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	// enter on an incomplete form moves to the next field.
	f.Update(tea.KeyMsg{Type: tea.KeyEnter})
	for _, r := range "a@b.c" {
		f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	f.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if f.Value("date") != "2025-06-01" || f.Value("email") != "a@b.c" {
		t.Fatalf("unexpected values date=%q email=%q", f.Value("date"), f.Value("email"))
	}
	if len(*got) != 1 || (*got)[0].Type != surface.EventFormSubmit {
		t.Errorf("expected one submit, got %v", *got)
	}
}

func TestTableSelectOutOfRange(t *testing.T) {
	tb := NewTable(Options{SurfaceID: "t", Data: json.RawMessage(`{"columns":["ID"],"rows":[{"id":1}]}`)})
	var got []Interaction
	tb.Subscribe(func(i Interaction) { got = append(got, i) })

	if tb.Select(1) || tb.Select(-1) {
		t.Error("out-of-range select should fail")
	}
	tb.Update(tea.KeyMsg{Type: tea.KeyDown})
	tb.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if len(got) != 1 {
		t.Fatalf("expected 1 interaction, got %d", len(got))
	}
}
