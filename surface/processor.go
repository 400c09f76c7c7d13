package surface

import (
	"fmt"
	"sync"
)

// Processor applies protocol envelopes to a Registry and fans out client
// events raised by renderers.
type Processor struct {
	registry  *Registry
	DebugFunc func(string) // injected for debug logging; no-op in tests

	mu        sync.Mutex // guards listeners; renderers emit from frontend goroutines
	listeners []*listener
}

type listener struct {
	fn func(ClientEvent)
}

// NewProcessor creates a processor over the given registry.
func NewProcessor(reg *Registry) *Processor {
	return &Processor{
		registry:  reg,
		DebugFunc: func(string) {},
	}
}

// Registry returns the registry the processor mutates.
func (p *Processor) Registry() *Registry { return p.registry }

// Process applies one envelope. Envelopes without an action or a surface id
// are rejected with ErrNotEnvelope before they reach the registry.
func (p *Processor) Process(env Envelope) error {
	if env.Action == "" || env.SurfaceID == "" {
		return ErrNotEnvelope
	}

	switch env.Action {
	case BeginRendering, SurfaceUpdate:
		p.registry.Set(env.SurfaceID, env.SurfaceType, env.Data)
		p.debug("%s %s (%s, %d bytes)", env.Action, env.SurfaceID, env.SurfaceType, len(env.Data))
	case DeleteSurface:
		p.registry.Remove(env.SurfaceID)
		p.debug("deleteSurface %s", env.SurfaceID)
	case DataModelUpdate:
		// Reserved: accepted, never mutates.
		p.debug("dataModelUpdate %s ignored", env.SurfaceID)
	default:
		p.debug("unknown action %q for %s ignored", env.Action, env.SurfaceID)
	}
	return nil
}

// OnSurfacesChanged registers a registry observer.
func (p *Processor) OnSurfacesChanged(fn func(Snapshot)) (unsubscribe func()) {
	return p.registry.OnChange(fn)
}

// OnClientEvent registers a client-event listener.
func (p *Processor) OnClientEvent(fn func(ClientEvent)) (unsubscribe func()) {
	l := &listener{fn: fn}
	p.mu.Lock()
	p.listeners = append(p.listeners, l)
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, cur := range p.listeners {
			if cur == l {
				p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
				return
			}
		}
	}
}

// SendClientEvent publishes a renderer interaction to every listener.
func (p *Processor) SendClientEvent(ev ClientEvent) {
	p.mu.Lock()
	ls := append([]*listener(nil), p.listeners...)
	p.mu.Unlock()
	for _, l := range ls {
		l.fn(ev)
	}
}

func (p *Processor) debug(format string, args ...any) {
	if p.DebugFunc != nil {
		p.DebugFunc(fmt.Sprintf(format, args...))
	}
}
