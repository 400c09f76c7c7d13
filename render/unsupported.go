package render

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/openfloorcontrol/showroom/surface"
)

// Unsupported is the placeholder for surface types with no renderer.
type Unsupported struct {
	emitter
	typ surface.Type
}

func NewUnsupported(opts Options) *Unsupported {
	return &Unsupported{typ: opts.Type}
}

func (u *Unsupported) EventType() string { return surface.EventUnknown }
func (u *Unsupported) Focusable() bool { return false }
func (u *Unsupported) Update(tea.KeyMsg) tea.Cmd { return nil }
func (u *Unsupported) Close() { u.closeEmitter() }

func (u *Unsupported) View(width int, focused bool) string {
	typ := string(u.typ)
	if typ == "" {
		typ = "(none)"
	}
	return frame(warnStyle.Render("Unsupported surface type: "+typ), width, focused)
}
