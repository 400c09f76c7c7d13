package render

import "github.com/openfloorcontrol/showroom/surface"

// Board is the ordered list of surface references shown in a transcript.
// Handles are 1-based and stable until Reset.
type Board struct {
	slots   []*Slot
	sink    func(surface.ClientEvent)
	booking *BookingSignal
	last    surface.Snapshot
}

// NewBoard creates an empty board. Interactions from every slot go to sink.
func NewBoard(sink func(surface.ClientEvent), booking *BookingSignal) *Board {
	if booking == nil {
		booking = NewBookingSignal()
	}
	return &Board{sink: sink, booking: booking, last: surface.Snapshot{}}
}

// SetSink replaces the interaction sink of the board and its slots.
func (b *Board) SetSink(sink func(surface.ClientEvent)) {
	b.sink = sink
	for _, s := range b.slots {
		s.sink = sink
	}
}

// Booking returns the board's booking-completed signal.
func (b *Board) Booking() *BookingSignal { return b.booking }

// Add appends a slot for surface id and syncs it with the latest snapshot.
func (b *Board) Add(id string) (handle int, slot *Slot) {
	slot = NewSlot(id, b.sink, b.booking)
	slot.Sync(b.last)
	b.slots = append(b.slots, slot)
	return len(b.slots), slot
}

// Sync applies a registry snapshot to every slot. It returns the handles of
// slots that built a new renderer or lost their surface.
func (b *Board) Sync(snap surface.Snapshot) []int {
	b.last = snap
	var changed []int
	for i, s := range b.slots {
		wasRemoved := s.Removed()
		if s.Sync(snap) || s.Removed() != wasRemoved {
			changed = append(changed, i+1)
		}
	}
	return changed
}

// Slot returns the slot with the given handle.
func (b *Board) Slot(handle int) (*Slot, bool) {
	if handle < 1 || handle > len(b.slots) {
		return nil, false
	}
	return b.slots[handle-1], true
}

// Len returns the number of slots.
func (b *Board) Len() int { return len(b.slots) }

// Focusable returns the handles of slots that accept input, oldest first.
func (b *Board) Focusable() []int {
	var out []int
	for i, s := range b.slots {
		if s.Focusable() {
			out = append(out, i+1)
		}
	}
	return out
}

// Reset closes every slot and forgets them. The snapshot is kept.
func (b *Board) Reset() {
	for _, s := range b.slots {
		s.Close()
	}
	b.slots = nil
}
