package render

// BookingSignal tells renderers that a booking has completed. A frontend owns
// one and passes it to the renderers it builds; renderers unsubscribe on
// Close. Like the renderers, it is used from a single goroutine.
type BookingSignal struct {
	subs map[int]func()
	next int
}

// NewBookingSignal creates a signal with no subscribers.
func NewBookingSignal() *BookingSignal {
	return &BookingSignal{subs: make(map[int]func())}
}

// Subscribe registers fn to run on every Raise.
func (s *BookingSignal) Subscribe(fn func()) (unsubscribe func()) {
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

// Raise notifies every current subscriber.
func (s *BookingSignal) Raise() {
	fns := make([]func(), 0, len(s.subs))
	for i := 0; i < s.next; i++ {
		if fn, ok := s.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	for _, fn := range fns {
		fn()
	}
}

// Subscribers returns the number of live subscriptions.
func (s *BookingSignal) Subscribers() int { return len(s.subs) }
