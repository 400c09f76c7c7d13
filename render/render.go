// Package render turns registry surfaces into terminal views. Each surface
// type resolves through a fixed table to one renderer variant; a Slot owns the
// renderer for one transcript entry and forwards its interactions as client
// events.
package render

import (
	"encoding/json"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/openfloorcontrol/showroom/surface"
)

// Interaction is what a renderer emits when the user acts on it.
// An empty Type means the renderer did not specify one.
type Interaction struct {
	Type    string
	Payload map[string]any
}

// Renderer presents one surface and emits interactions on a single channel.
type Renderer interface {
	// EventType is the label applied to interactions emitted without a type.
	EventType() string

	// Subscribe sets the one outbound interaction handler.
	Subscribe(fn func(Interaction))

	// View draws the surface. focused is true while it owns the keyboard.
	View(width int, focused bool) string

	// Update handles a key while the renderer is focused.
	Update(msg tea.KeyMsg) tea.Cmd

	// Focusable reports whether the renderer currently accepts input.
	Focusable() bool

	// Close releases subscriptions. The renderer must not emit afterwards.
	Close()
}

// Options carries everything a renderer is built from.
type Options struct {
	SurfaceID string
	Type      surface.Type
	Data      json.RawMessage
	Booking   *BookingSignal
}

// Kind is the closed set of renderer variants.
type Kind int

const (
	KindUnsupported Kind = iota
	KindTable
	KindComparison
	KindBookingForm
)

var kinds = map[surface.Type]Kind{
	surface.TypeTable:          KindTable,
	surface.TypeCardComparison: KindComparison,
	surface.TypeBookingForm:    KindBookingForm,
}

// Resolve maps a surface type to its renderer variant.
func Resolve(t surface.Type) Kind {
	if k, ok := kinds[t]; ok {
		return k
	}
	return KindUnsupported
}

func (k Kind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindComparison:
		return "comparison"
	case KindBookingForm:
		return "booking-form"
	default:
		return "unsupported"
	}
}

// New builds the renderer for opts.Type.
func New(opts Options) Renderer {
	switch Resolve(opts.Type) {
	case KindTable:
		return NewTable(opts)
	case KindComparison:
		return NewComparison(opts)
	case KindBookingForm:
		return NewBookingForm(opts, MinimalFields)
	case KindUnsupported:
		return NewUnsupported(opts)
	}
	return NewUnsupported(opts)
}

// emitter is the single outbound channel shared by the variants.
type emitter struct {
	fn func(Interaction)
}

func (e *emitter) Subscribe(fn func(Interaction)) { e.fn = fn }

func (e *emitter) emit(i Interaction) {
	if e.fn != nil {
		e.fn(i)
	}
}

func (e *emitter) closeEmitter() { e.fn = nil }
