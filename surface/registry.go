package surface

import (
	"encoding/json"
	"sort"
)

// Registry maps surface ids to their current type and data. It is the only
// owner of surface data. A registry belongs to a single goroutine (the chat
// event loop) and carries no lock.
type Registry struct {
	surfaces  map[string]Surface
	observers []*observer
}

type observer struct {
	fn func(Snapshot)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{surfaces: make(map[string]Surface)}
}

// Set inserts or fully replaces a surface and notifies observers.
func (r *Registry) Set(id string, typ Type, data json.RawMessage) {
	r.surfaces[id] = Surface{ID: id, Type: typ, Data: cloneRaw(data)}
	r.publish()
}

// Remove deletes a surface if present. Removing an unknown id does nothing.
func (r *Registry) Remove(id string) {
	if _, ok := r.surfaces[id]; !ok {
		return
	}
	delete(r.surfaces, id)
	r.publish()
}

// Get returns the surface with the given id.
func (r *Registry) Get(id string) (Surface, bool) {
	s, ok := r.surfaces[id]
	if !ok {
		return Surface{}, false
	}
	s.Data = cloneRaw(s.Data)
	return s, true
}

// Snapshot returns an independent copy of every live surface.
func (r *Registry) Snapshot() Snapshot {
	snap := make(Snapshot, len(r.surfaces))
	for id, s := range r.surfaces {
		s.Data = cloneRaw(s.Data)
		snap[id] = s
	}
	return snap
}

// Len returns the number of live surfaces.
func (r *Registry) Len() int { return len(r.surfaces) }

// IDs returns the live surface ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.surfaces))
	for id := range r.surfaces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// OnChange registers fn to receive a snapshot after every mutation.
// Observers are called synchronously, in registration order.
func (r *Registry) OnChange(fn func(Snapshot)) (unsubscribe func()) {
	o := &observer{fn: fn}
	r.observers = append(r.observers, o)
	return func() {
		for i, cur := range r.observers {
			if cur == o {
				r.observers = append(r.observers[:i], r.observers[i+1:]...)
				return
			}
		}
	}
}

func (r *Registry) publish() {
	if len(r.observers) == 0 {
		return
	}
	// Each observer gets its own copy.
	for _, o := range append([]*observer(nil), r.observers...) {
		o.fn(r.Snapshot())
	}
}
