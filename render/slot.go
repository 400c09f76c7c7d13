package render

import (
	"bytes"
	"encoding/json"
	"maps"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gowebpki/jcs"
	"github.com/openfloorcontrol/showroom/surface"
)

// Slot hosts the renderer for one surface reference in the transcript.
// It rebuilds the renderer only when the surface type changes or its data is
// no longer structurally equal to what was last rendered.
type Slot struct {
	id      string
	sink    func(surface.ClientEvent)
	booking *BookingSignal

	typ        surface.Type
	canon      []byte
	renderer   Renderer
	removed    bool
	generation int
}

// NewSlot creates an empty slot for surface id. Interactions go to sink.
func NewSlot(id string, sink func(surface.ClientEvent), booking *BookingSignal) *Slot {
	return &Slot{id: id, sink: sink, booking: booking}
}

// SurfaceID is the surface the slot follows.
func (s *Slot) SurfaceID() string { return s.id }

// Renderer returns the current renderer, or nil before the first Sync.
func (s *Slot) Renderer() Renderer { return s.renderer }

// Generation counts renderer instantiations.
func (s *Slot) Generation() int { return s.generation }

// Removed reports whether the surface has been deleted from the registry.
func (s *Slot) Removed() bool { return s.removed }

// Sync brings the slot up to date with snap. It returns true when a new
// renderer was built.
func (s *Slot) Sync(snap surface.Snapshot) bool {
	sf, ok := snap[s.id]
	if !ok {
		if s.renderer != nil {
			s.renderer.Close()
			s.renderer = nil
			s.removed = true
		}
		return false
	}

	canon := canonical(sf.Data)
	if s.renderer != nil && sf.Type == s.typ && bytes.Equal(canon, s.canon) {
		return false
	}
	s.mount(sf, canon)
	return true
}

func (s *Slot) mount(sf surface.Surface, canon []byte) {
	if s.renderer != nil {
		s.renderer.Close()
	}
	r := New(Options{
		SurfaceID: sf.ID,
		Type:      sf.Type,
		Data:      sf.Data,
		Booking:   s.booking,
	})
	r.Subscribe(func(i Interaction) { s.forward(r, i) })

	s.renderer = r
	s.typ = sf.Type
	s.canon = canon
	s.removed = false
	s.generation++
}

// forward labels an interaction and hands it to the sink.
func (s *Slot) forward(r Renderer, i Interaction) {
	if s.sink == nil {
		return
	}
	typ := i.Type
	if typ == "" {
		typ = r.EventType()
	}
	if typ == "" {
		typ = surface.EventUnknown
	}
	payload := maps.Clone(i.Payload)
	if payload == nil {
		payload = make(map[string]any)
	}
	if _, ok := payload["surfaceId"]; !ok {
		payload["surfaceId"] = s.id
	}
	s.sink(surface.ClientEvent{Type: typ, Payload: payload})
}

// View draws the current renderer, or a marker for a removed surface.
func (s *Slot) View(width int, focused bool) string {
	switch {
	case s.renderer != nil:
		return s.renderer.View(width, focused)
	case s.removed:
		return dimStyle.Render("[surface removed]")
	default:
		return dimStyle.Render("[loading surface…]")
	}
}

// Focusable reports whether the slot's renderer accepts input.
func (s *Slot) Focusable() bool { return s.renderer != nil && s.renderer.Focusable() }

// Update routes a key to the renderer.
func (s *Slot) Update(msg tea.KeyMsg) tea.Cmd {
	if s.renderer == nil {
		return nil
	}
	return s.renderer.Update(msg)
}

// Close releases the renderer.
func (s *Slot) Close() {
	if s.renderer != nil {
		s.renderer.Close()
		s.renderer = nil
	}
}

// canonical returns the RFC 8785 form of data, so that key order and
// whitespace do not count as changes.
func canonical(data json.RawMessage) []byte {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	out, err := jcs.Transform(data)
	if err != nil {
		return data
	}
	return out
}
