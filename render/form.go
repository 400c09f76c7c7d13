package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/openfloorcontrol/showroom/surface"
)

// Field is one editable booking-form input.
type Field struct {
	Key         string
	Label       string
	Placeholder string
}

// FullFields is the field set of the form embedded in a comparison card.
var FullFields = []Field{
	{Key: "customer_name", Label: "Name", Placeholder: "Jane Doe"},
	{Key: "date", Label: "Date", Placeholder: "2025-06-01"},
	{Key: "email", Label: "Email", Placeholder: "jane@example.com"},
}

// MinimalFields is the field set of a standalone booking-form surface.
var MinimalFields = []Field{
	{Key: "date", Label: "Preferred date", Placeholder: "2025-06-01"},
	{Key: "email", Label: "Email", Placeholder: "jane@example.com"},
}

// BookingForm collects booking details for one car. Every field is required.
type BookingForm struct {
	emitter
	surfaceID string
	booking   surface.BookingContext
	err       error
	fields    []Field
	inputs    []textinput.Model
	focus     int
	disabled  bool
	embedded  bool
	unsub     func()
}

// NewBookingForm builds a standalone form from booking-form surface data.
// It goes inert once opts.Booking is raised.
func NewBookingForm(opts Options, fields []Field) *BookingForm {
	f := newForm(opts.SurfaceID, fields)
	f.booking, f.err = surface.DecodeBookingForm(opts.Data)
	if opts.Booking != nil {
		f.unsub = opts.Booking.Subscribe(func() { f.SetDisabled(true) })
	}
	return f
}

// newEmbeddedForm builds the form a comparison card shows for its booking
// context. The card owns its lifecycle and disabled state.
func newEmbeddedForm(surfaceID string, bc surface.BookingContext) *BookingForm {
	f := newForm(surfaceID, FullFields)
	f.booking = bc
	f.embedded = true
	return f
}

func newForm(surfaceID string, fields []Field) *BookingForm {
	f := &BookingForm{surfaceID: surfaceID, fields: fields}
	for i, fd := range fields {
		ti := textinput.New()
		ti.Placeholder = fd.Placeholder
		ti.Prompt = ""
		ti.CharLimit = 120
		if i == 0 {
			ti.Focus()
		}
		f.inputs = append(f.inputs, ti)
	}
	return f
}

func (f *BookingForm) EventType() string { return surface.EventFormSubmit }

func (f *BookingForm) Focusable() bool { return !f.disabled && f.err == nil }

func (f *BookingForm) Close() {
	if f.unsub != nil {
		f.unsub()
		f.unsub = nil
	}
	f.closeEmitter()
}

// CarID is the car being booked.
func (f *BookingForm) CarID() string { return string(f.booking.CarID) }

// Fields returns the form's field set.
func (f *BookingForm) Fields() []Field { return f.fields }

// SetField sets a field by key. It is a no-op while disabled or for unknown keys.
func (f *BookingForm) SetField(key, value string) bool {
	if f.disabled {
		return false
	}
	for i, fd := range f.fields {
		if fd.Key == key {
			f.inputs[i].SetValue(value)
			return true
		}
	}
	return false
}

// Value returns the current value of a field.
func (f *BookingForm) Value(key string) string {
	for i, fd := range f.fields {
		if fd.Key == key {
			return f.inputs[i].Value()
		}
	}
	return ""
}

// IsValid reports whether every required field is non-empty.
func (f *BookingForm) IsValid() bool {
	for i := range f.fields {
		if strings.TrimSpace(f.inputs[i].Value()) == "" {
			return false
		}
	}
	return true
}

// Submit emits formSubmit with the car id, every field, and the surface id.
// It does nothing while the form is invalid or disabled.
func (f *BookingForm) Submit() bool {
	if f.disabled || !f.IsValid() {
		return false
	}
	payload := map[string]any{
		"carId":     f.CarID(),
		"surfaceId": f.surfaceID,
	}
	for i, fd := range f.fields {
		payload[fd.Key] = strings.TrimSpace(f.inputs[i].Value())
	}
	f.emit(Interaction{Type: surface.EventFormSubmit, Payload: payload})
	return true
}

// Cancel emits cancel regardless of field validity. It does nothing while
// disabled.
func (f *BookingForm) Cancel() bool {
	if f.disabled {
		return false
	}
	f.emit(Interaction{Type: surface.EventCancel, Payload: map[string]any{
		"surfaceId": f.surfaceID,
	}})
	return true
}

// SetDisabled makes every input and action inert.
func (f *BookingForm) SetDisabled(disabled bool) {
	f.disabled = disabled
	if disabled {
		for i := range f.inputs {
			f.inputs[i].Blur()
		}
	}
}

// Disabled reports whether the form is inert.
func (f *BookingForm) Disabled() bool { return f.disabled }

func (f *BookingForm) Update(msg tea.KeyMsg) tea.Cmd {
	if f.disabled {
		return nil
	}
	switch msg.String() {
	case "tab", "down":
		return f.move(1)
	case "shift+tab", "up":
		return f.move(-1)
	case "enter":
		if f.focus < len(f.inputs)-1 && !f.IsValid() {
			return f.move(1)
		}
		f.Submit()
		return nil
	case "ctrl+x":
		f.Cancel()
		return nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *BookingForm) move(delta int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (f *BookingForm) View(width int, focused bool) string {
	if f.err != nil {
		return errorStyle.Render(fmt.Sprintf("Could not render booking form: %v", f.err))
	}

	var sb strings.Builder
	title := "Book a test drive"
	if name := strings.TrimSpace(fmt.Sprintf("%s %s %s", f.booking.Year, f.booking.Make, f.booking.Model)); name != "" {
		title += ": " + name
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	if f.booking.Price != "" {
		sb.WriteString(dimStyle.Render("Price: " + f.booking.Price.String()))
		sb.WriteString("\n")
	}

	for i, fd := range f.fields {
		label := fmt.Sprintf("%-15s", fd.Label+":")
		if focused && !f.disabled && i == f.focus {
			label = buttonStyle.Render(label)
		}
		sb.WriteString(label)
		if f.disabled {
			sb.WriteString(dimStyle.Render(f.inputs[i].Value()))
		} else {
			sb.WriteString(f.inputs[i].View())
		}
		sb.WriteString("\n")
	}

	switch {
	case f.disabled:
		sb.WriteString(warnStyle.Render("Booking complete."))
	case f.IsValid():
		sb.WriteString(buttonStyle.Render("[enter] Submit") + "  " + dimStyle.Render("[ctrl+x] Cancel"))
	default:
		sb.WriteString(disabledButtonStyle.Render("[enter] Submit") + "  " + dimStyle.Render("[ctrl+x] Cancel"))
	}

	if f.embedded {
		return sb.String()
	}
	return frame(sb.String(), width, focused)
}
